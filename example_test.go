package webshot_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	webshot "github.com/porticus-lab/go-webshot"
	"github.com/porticus-lab/go-webshot/shrink"
)

func Example() {
	// Create a capturer (reuses the browser across captures).
	c, err := webshot.NewCapturer(webshot.WithNoSandbox())
	if err != nil {
		log.Fatal(err)
	}
	defer c.Close()

	// Capture the visible viewport with default settings (1366x768).
	res, err := c.CaptureURL(context.Background(), "https://example.com", nil)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Captured PNG: %d bytes\n", res.Len())
}

func Example_fullPage() {
	c, err := webshot.NewCapturer(
		webshot.WithTimeout(90*time.Second),
		webshot.WithNoSandbox(),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer c.Close()

	// Full-page mode scrolls through the document first so lazy-loaded
	// content materializes before the true height is measured.
	shot := &webshot.ShotConfig{
		Width:    1366,
		Height:   768,
		FullPage: true,
	}

	res, err := c.CaptureURL(context.Background(), "https://example.com", shot)
	if err != nil {
		log.Fatal(err)
	}

	g := res.Geometry()
	fmt.Printf("Full page is %dx%d\n", g.Width, g.Height)
}

func Example_withBudget() {
	res, err := webshot.CaptureURL(
		context.Background(),
		"https://example.com",
		&webshot.ShotConfig{FullPage: true},
		webshot.WithNoSandbox(),
	)
	if err != nil {
		log.Fatal(err)
	}

	// Bound the artifact to 5 MiB no matter how large the page rendered.
	out, err := shrink.ToBudget(res.Bytes(), shrink.DefaultBudget())
	if err != nil {
		log.Fatal(err)
	}
	if out.BestEffort {
		fmt.Println("warning: could not reach the budget, wrote smallest achievable")
	}

	if err := os.WriteFile("shot"+out.Ext, out.Data, 0o644); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Wrote %d bytes as %s\n", len(out.Data), out.Ext)
}
