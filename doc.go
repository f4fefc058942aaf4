/*
Package iconic exports a complete icon pack out of a single source image: PNG icons
at every common size, a favicon in ICO format, an apple touch icon, an optional SVG
wrapper and a README with the HTML link tags, all bundled into a zip archive.
An optional text overlay can be drawn on every rendition.

The package provides a command line interface, supporting batch exports, a hot folder
and an HTTP service. To check the supported commands type:

	$ iconic --help

In case you wish to integrate the API in a self constructed environment here is a simple example:

	package main

	import (
		"context"
		"fmt"
		"github.com/esimov/iconic"
	)

	func main() {
		p := iconic.NewProcessor()
		overlay := iconic.NewTextOverlay("Hi")
		p.Overlay = &overlay

		src := &iconic.FileSource{Path: "logo.png"}
		if _, err := p.Export(context.Background(), src, &iconic.FileSaver{Dir: "."}); err != nil {
			fmt.Printf("Error exporting the icon pack: %s", err.Error())
		}
	}
*/
package iconic
