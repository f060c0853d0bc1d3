// Package toast provides transient user notifications.
//
// A Center keeps the list of visible toasts in a store.Store so the
// rendering layer can subscribe to it like any other state. Each toast is
// removed automatically once its duration elapses:
//
//	center := toast.New(toast.DefaultDuration)
//	center.Subscribe(func(ts []toast.Toast) { draw(ts) })
//
//	center.Success("Bier hinzugefügt! 🍺")
//	center.Error("Fehler beim Hinzufügen des Biers")
//
// A duration of zero keeps a toast until Remove or Clear is called.
package toast
