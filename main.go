package main

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"time"

	"github.com/joho/godotenv"
	"github.com/veandco/go-sdl2/sdl"

	"media-dock/pkg/render"
	"media-dock/screens/library"
)

const (
	targetFPS      = 60
	fallbackWidth  = 1920
	fallbackHeight = 1080
)

func main() {
	// SDL and the decode callbacks require the render loop to stay on one
	// OS thread.
	runtime.LockOSThread()

	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	windowTitle := os.Getenv("APP_TITLE")
	if windowTitle == "" {
		windowTitle = "Media Dock"
	}

	if err := initializeSDL2(); err != nil {
		log.Fatalf("Failed to initialize SDL2: %v", err)
	}
	defer func() {
		log.Println("Shutting down SDL2...")
		sdl.Quit()
	}()

	screenWidth, screenHeight := getDisplayDimensions()
	log.Printf("Starting %s | Resolution: %dx%d", windowTitle, screenWidth, screenHeight)

	window, err := sdl.CreateWindow(windowTitle, 0, 0, screenWidth, screenHeight, sdl.WINDOW_SHOWN|sdl.WINDOW_FULLSCREEN)
	if err != nil {
		log.Fatalf("Failed to create window: %v", err)
	}
	defer window.Destroy()

	renderer, err := createRenderer(window)
	if err != nil {
		log.Fatalf("Failed to create renderer: %v", err)
	}
	defer renderer.Destroy()

	// All frame copies and texture uploads marshal through this dispatcher
	// onto the render thread.
	dispatcher := render.NewDispatcher()

	screen := library.NewLibraryScreen(window, renderer, dispatcher)
	defer screen.Close()

	runMainLoop(screen, dispatcher)

	log.Println("Media Dock shutting down...")
}

// initializeSDL2 initializes SDL2, trying video drivers in order until one
// comes up. Respects SDL_VIDEODRIVER when set.
func initializeSDL2() error {
	var videoDrivers []string
	if envDriver := os.Getenv("SDL_VIDEODRIVER"); envDriver != "" {
		log.Printf("Using environment SDL_VIDEODRIVER: %s", envDriver)
		videoDrivers = []string{envDriver, "software", "dummy"}
	} else if runtime.GOOS == "darwin" {
		videoDrivers = []string{"cocoa", "software", "dummy"}
	} else {
		videoDrivers = []string{"kmsdrm", "wayland", "x11", "software", "dummy"}
	}

	for _, driver := range videoDrivers {
		log.Printf("Attempting SDL2 initialization with %s driver", driver)
		os.Setenv("SDL_VIDEODRIVER", driver)

		if err := trySDLInitialization(driver); err != nil {
			log.Printf("SDL2 initialization failed with %s driver: %v", driver, err)
			continue
		}
		log.Printf("SDL2 successfully initialized with %s driver", driver)
		return nil
	}
	return fmt.Errorf("all SDL2 video drivers failed")
}

// trySDLInitialization attempts to initialize SDL2 with one driver.
func trySDLInitialization(driver string) error {
	sdl.Quit()

	sdl.SetHint(sdl.HINT_VIDEODRIVER, driver)
	switch driver {
	case "cocoa":
		sdl.SetHint(sdl.HINT_RENDER_DRIVER, "opengl")
	case "kmsdrm":
		sdl.SetHint("SDL_KMSDRM_REQUIRE_DRM_MASTER", "1")
		sdl.SetHint(sdl.HINT_RENDER_DRIVER, "opengles2")
		sdl.SetHint("SDL_RENDER_VSYNC", "1")
	case "software", "dummy":
		sdl.SetHint(sdl.HINT_RENDER_DRIVER, "software")
	}
	sdl.SetHint(sdl.HINT_RENDER_BATCHING, "1")
	sdl.SetHint(sdl.HINT_VIDEO_MINIMIZE_ON_FOCUS_LOSS, "0")

	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return fmt.Errorf("SDL_INIT_VIDEO failed: %v", err)
	}

	driverName, err := sdl.GetCurrentVideoDriver()
	if err != nil {
		return fmt.Errorf("failed to get video driver: %v", err)
	}
	log.Printf("Video driver initialized: %s", driverName)
	return nil
}

// getDisplayDimensions returns the screen dimensions or fallback values.
func getDisplayDimensions() (int32, int32) {
	displayMode, err := sdl.GetCurrentDisplayMode(0)
	if err != nil {
		log.Printf("Warning: failed to get display mode, using fallback: %v", err)
		return fallbackWidth, fallbackHeight
	}
	return displayMode.W, displayMode.H
}

// createRenderer creates an SDL2 renderer, preferring hardware acceleration
// on GPU drivers.
func createRenderer(window *sdl.Window) (*sdl.Renderer, error) {
	currentDriver, err := sdl.GetCurrentVideoDriver()
	if err != nil {
		currentDriver = "unknown"
	}

	var renderer *sdl.Renderer
	if currentDriver == "kmsdrm" || currentDriver == "cocoa" || currentDriver == "wayland" || currentDriver == "x11" {
		var flags uint32 = sdl.RENDERER_ACCELERATED
		if currentDriver != "kmsdrm" {
			// kmsdrm VSync causes async flip errors on the VC4
			flags |= sdl.RENDERER_PRESENTVSYNC
		}
		renderer, err = sdl.CreateRenderer(window, -1, flags)
		if err != nil {
			log.Printf("Hardware acceleration failed, trying software: %v", err)
			renderer = nil
		}
	}
	if renderer == nil {
		log.Printf("Using software renderer for %s driver", currentDriver)
		renderer, err = sdl.CreateRenderer(window, -1, sdl.RENDERER_SOFTWARE)
		if err != nil {
			return nil, err
		}
	}

	renderer.SetDrawBlendMode(sdl.BLENDMODE_BLEND)
	return renderer, nil
}

// runMainLoop executes the SDL2 render loop: events, queued frame copies,
// state update, draw, frame cap.
func runMainLoop(screen *library.LibraryScreen, dispatcher *render.Dispatcher) {
	running := true
	frameTime := time.Second / targetFPS
	lastTime := time.Now()

	for running {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch event.(type) {
			case *sdl.QuitEvent:
				running = false
			}
		}

		dispatcher.Drain()

		if err := screen.Update(); err != nil {
			log.Printf("Screen update error: %v", err)
			running = false
			break
		}
		if err := screen.Draw(); err != nil {
			log.Printf("Screen draw error: %v", err)
			running = false
			break
		}

		elapsed := time.Since(lastTime)
		if elapsed < frameTime {
			time.Sleep(frameTime - elapsed)
		}
		lastTime = time.Now()
	}
}
