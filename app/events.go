package app

import (
	"github.com/go-gl/glfw/v3.3/glfw"
)

type EventHandler struct {
	switches map[glfw.Key]*bool
	actions  map[glfw.Key]func()
}

func NewEventHandler() *EventHandler {
	return &EventHandler{
		switches: make(map[glfw.Key]*bool),
		actions:  make(map[glfw.Key]func()),
	}
}

// AddSwitch flips *value on every press of key. Repeats and releases are ignored.
func (eh *EventHandler) AddSwitch(key glfw.Key, value *bool) {
	eh.switches[key] = value
}

// AddAction runs f on every press of key
func (eh *EventHandler) AddAction(key glfw.Key, f func()) {
	eh.actions[key] = f
}

func (eh *EventHandler) KeyCallback() glfw.KeyCallback {
	return func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		if f, found := eh.actions[key]; found {
			f()
		}
		if value, found := eh.switches[key]; found {
			*value = !*value
		}
	}
}
