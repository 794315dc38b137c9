package ui

import (
	"time"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/jyane/nescore/nes"
)

const framesPerSecond = 60

// cyclesPerFrame bounds one presentation tick when the console does not complete a frame.
const cyclesPerFrame = nes.CPUFrequency / framesPerSecond

// runFrame steps the console until a frame is completed or a frame worth of cycles ran.
func runFrame(console nes.Console) error {
	cycles := 0
	for cycles < cyclesPerFrame {
		n, err := console.Step()
		if err != nil {
			return err
		}
		cycles += n
		if _, ok := console.Frame(); ok {
			return nil
		}
	}
	return nil
}

func mainLoop(window *glfw.Window, console nes.Console, program uint32, pad *controller) error {
	ticker := time.NewTicker(time.Second / framesPerSecond)
	defer ticker.Stop()
	for range ticker.C {
		if window.ShouldClose() {
			return nil
		}
		glfw.PollEvents()
		pad.set(window)
		if err := runFrame(console); err != nil {
			return err
		}
		// The front buffer is stable until the next VBlank.
		frame, _ := console.Frame()
		updateTexture(program, frame)
		window.SwapBuffers()
	}
	return nil
}

// Start opens a window and runs the console until the window is closed.
func Start(console nes.Console, width int, height int) error {
	if err := glfw.Init(); err != nil {
		return errors.Wrap(err, "failed to initialize glfw")
	}
	defer glfw.Terminate()
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	window, err := glfw.CreateWindow(width, height, "nescore", nil, nil)
	if err != nil {
		return errors.Wrap(err, "failed to create window")
	}
	window.MakeContextCurrent()
	glfw.SwapInterval(1)
	if err := gl.Init(); err != nil {
		return errors.Wrap(err, "failed to initialize gl")
	}
	glog.V(2).Infof("OpenGL version %s", gl.GoStr(gl.GetString(gl.VERSION)))
	program, err := newProgram()
	if err != nil {
		return err
	}
	pad := &controller{}
	console.ConnectPort(0, pad)
	return mainLoop(window, console, program, pad)
}
