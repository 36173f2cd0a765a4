package main

import (
	"log"
	"runtime"

	"github.com/vkngwrapper/vulkan-cube/renderer"
)

func init() {
	// SDL and the Vulkan surface must stay on the thread that created them.
	runtime.LockOSThread()
}

func main() {
	app, err := renderer.NewApp(renderer.DefaultConfig())
	if err != nil {
		log.Fatalf("%+v\n", err)
	}

	err = app.Run()
	if err != nil {
		log.Fatalf("%+v\n", err)
	}
}
