package main

import (
	"log"
	"runtime"

	"github.com/vkngwrapper/vulkan-cube/renderer"
	"github.com/vkngwrapper/vulkan-cube/stage"
)

func init() {
	// SDL and the Vulkan surface must stay on the thread that created them.
	runtime.LockOSThread()
}

func main() {
	config := renderer.DefaultConfig()
	config.Title = "Cube (textured)"
	config.Variant = stage.Textured

	app, err := renderer.NewApp(config)
	if err != nil {
		log.Fatalf("%+v\n", err)
	}

	err = app.Run()
	if err != nil {
		log.Fatalf("%+v\n", err)
	}
}
