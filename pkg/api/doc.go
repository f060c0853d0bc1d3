// Package api describes the club service: its DTOs, endpoint paths, and thin
// services that turn typed calls into gateway requests.
//
// Services only build paths and query strings; they hold no state and do no
// error handling beyond what the gateway returns.
package api
