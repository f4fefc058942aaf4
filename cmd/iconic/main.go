package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/esimov/iconic"
	"github.com/esimov/iconic/config"
	"github.com/esimov/iconic/server"
	"github.com/esimov/iconic/utils"
	"github.com/esimov/iconic/watcher"
)

const HelpBanner = `
┬┌─┐┌─┐┌┐┌┬┌─┐
││  │ │││││├
┴└─┘└─┘┘└┘┴└─┘

Icon pack generator.
    Version: %s

`

// Version indicates the current build version.
var Version string

var (
	// Flags
	source         = flag.String("in", "", "Source image: file, directory, URL or - for stdin")
	destination    = flag.String("out", ".", "Destination: zip file, directory or - for stdout")
	prompt         = flag.String("prompt", "", "Generate the source image out of a text prompt")
	text           = flag.String("text", "", "Overlay text")
	textColor      = flag.String("color", "#000000", "Overlay text color")
	fontSize       = flag.Int("font-size", iconic.DefaultFontSize, "Overlay font size in pixels")
	fontFamily     = flag.String("font", iconic.DefaultFont, "Overlay font family")
	posX           = flag.Float64("x", 0.5, "Overlay horizontal position (0-1)")
	posY           = flag.Float64("y", 0.5, "Overlay vertical position (0-1)")
	includeSVG     = flag.Bool("svg", true, "Include the SVG version")
	overlayFavicon = flag.Bool("favicon-overlay", true, "Draw the overlay on the favicon")
	overlaySVG     = flag.Bool("svg-overlay", true, "Add the overlay to the SVG version")
	background     = flag.String("bg", "", "Flatten the source over a background color")
	fitSquare      = flag.Bool("fit", false, "Center a non square source on a square canvas")
	fitScale       = flag.Float64("scale", 1, "Share of the square canvas taken by a fitted source")
	blend          = flag.String("blend", "src_over", "Composition operator used with the background color")
	workers        = flag.Int("conc", runtime.NumCPU(), "Number of files to process concurrently")
	configFile     = flag.String("config", "", "YAML configuration file")
	serve          = flag.Bool("serve", false, "Start the HTTP service")
	addr           = flag.String("addr", ":8080", "HTTP service address")
	watchDir       = flag.String("watch", "", "Export every image dropped into the folder")
	fontDir        = flag.String("fonts", "", "Directory of additional .ttf and .otf fonts")
	listFonts      = flag.Bool("list-fonts", false, "List the available font families")
)

func main() {
	log.SetFlags(0)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, HelpBanner, Version)
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := loadConfig(*configFile)
	if err != nil {
		log.Fatalf(utils.DecorateText("Failed to load the configuration: %v", utils.ErrorMessage), err)
	}

	if len(cfg.FontDir) > 0 {
		families, err := iconic.LoadFontDir(cfg.FontDir)
		if err != nil {
			log.Fatalf(utils.DecorateText("Failed to load the fonts: %v", utils.ErrorMessage), err)
		}
		log.Printf("Loaded fonts: %s", utils.DecorateText(strings.Join(families, ", "), utils.StatusMessage))
	}
	if *listFonts {
		for _, family := range iconic.FontFamilies() {
			fmt.Println(family)
		}
		return
	}
	if err := cfg.Overlay.Validate(); err != nil {
		log.Fatalf(utils.DecorateText("%v", utils.ErrorMessage), err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	proc := cfg.Processor()
	proc.Notifier = iconic.NewLogNotifier(os.Stderr)

	switch {
	case *serve:
		srv := server.New(proc, cfg.Generator())
		srv.MaxUpload = cfg.Server.MaxUpload
		if err := srv.ListenAndServe(ctx, cfg.Server.Addr); err != nil {
			log.Fatalf(utils.DecorateText("Server error: %v", utils.ErrorMessage), err)
		}
	case len(*watchDir) > 0:
		if err := os.MkdirAll(*destination, 0755); err != nil {
			log.Fatalf(utils.DecorateText("Unable to create the destination directory: %v", utils.ErrorMessage), err)
		}
		w, err := watcher.New(*watchDir, *destination, proc)
		if err != nil {
			log.Fatalf(utils.DecorateText("%v", utils.ErrorMessage), err)
		}
		if err := w.Run(ctx); err != nil {
			log.Fatalf(utils.DecorateText("%v", utils.ErrorMessage), err)
		}
	case len(*source) > 0 || len(*prompt) > 0:
		// The progress is reported by the spinner and the status lines.
		proc.Notifier = nil
		op := &iconic.Ops{
			Src:       *source,
			Dst:       *destination,
			Prompt:    *prompt,
			Generator: cfg.Generator(),
			Workers:   *workers,
		}
		if err := proc.Execute(ctx, op); err != nil {
			os.Exit(1)
		}
	default:
		flag.Usage()
		log.Fatal(fmt.Sprintf("%s%s",
			utils.DecorateText("\nPlease provide a source image, a prompt, a folder to watch or -serve!", utils.ErrorMessage),
			utils.DefaultColor,
		))
	}
}

// loadConfig loads the configuration file and applies the explicitly set flags
// on top of it. The result is validated once more, since flags bypass the checks
// done while loading.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

// applyFlags overrides the configuration with the explicitly set flags.
func applyFlags(cfg *config.Config) {
	overlay := iconic.NewTextOverlay("")
	if cfg.Overlay != nil {
		overlay = *cfg.Overlay
	}
	overlaySet := false

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "text":
			overlay.Text = *text
			overlay.Enabled = len(*text) > 0
			overlaySet = true
		case "color":
			overlay.Color = *textColor
			overlaySet = true
		case "font-size":
			overlay.FontSize = *fontSize
			overlaySet = true
		case "font":
			overlay.FontFamily = *fontFamily
			overlaySet = true
		case "x":
			overlay.Position.X = *posX
			overlaySet = true
		case "y":
			overlay.Position.Y = *posY
			overlaySet = true
		case "svg":
			cfg.Pack.IncludeSVG = *includeSVG
		case "favicon-overlay":
			cfg.Pack.OverlayFavicon = *overlayFavicon
		case "svg-overlay":
			cfg.Pack.OverlaySVG = *overlaySVG
		case "bg":
			cfg.Canvas.Background = *background
		case "fit":
			cfg.Canvas.FitSquare = *fitSquare
		case "scale":
			cfg.Canvas.FitScale = *fitScale
		case "blend":
			cfg.Canvas.Blend = *blend
		case "addr":
			cfg.Server.Addr = *addr
		case "fonts":
			cfg.FontDir = *fontDir
		}
	})
	if overlaySet {
		cfg.Overlay = &overlay
	}
}
