package ui

import "github.com/go-gl/glfw/v3.3/glfw"

// References:
//   http://hp.vector.co.jp/authors/VA042397/nes/joypad.html (In Japanese)
//   https://www.nesdev.org/wiki/Standard_controller

type button int

// Report order of the standard controller, 1 means pressed otherwise 0.
const (
	buttonA button = iota
	buttonB
	buttonSelect
	buttonStart
	buttonUp
	buttonDown
	buttonLeft
	buttonRight
)

// keyMap binds the keyboard: WASD for directions, J/H for A/B, G/F for Start/Select.
var keyMap = [8]glfw.Key{
	buttonA:      glfw.KeyJ,
	buttonB:      glfw.KeyH,
	buttonSelect: glfw.KeyF,
	buttonStart:  glfw.KeyG,
	buttonUp:     glfw.KeyW,
	buttonDown:   glfw.KeyS,
	buttonLeft:   glfw.KeyA,
	buttonRight:  glfw.KeyD,
}

// controller is a standard joypad attached to a console port. The console
// reads it serially through $4016/$4017.
type controller struct {
	buttons [8]bool
	index   byte
	strobe  byte
}

// set latches the pressed keys of the window.
func (c *controller) set(window *glfw.Window) {
	for i, key := range keyMap {
		c.buttons[i] = window.GetKey(key) == glfw.Press
	}
}

// Read returns the next button bit. While strobe is high it keeps returning A.
func (c *controller) Read() byte {
	ret := byte(0)
	if c.index < 8 && c.buttons[c.index] {
		ret = 1
	}
	c.index++
	if c.strobe&1 == 1 {
		c.index = 0
	}
	return ret
}

// Write sets the strobe, a high strobe reloads the shift register.
func (c *controller) Write(data byte) {
	c.strobe = data
	if c.strobe&1 == 1 {
		c.index = 0
	}
}
