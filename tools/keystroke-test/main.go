// Command keystroke-test is a manual testing tool for the keyboard hook.
//
// It checks that key events can be received, starts the hook, and prints a
// line per second with counts of printable and control keys until
// interrupted with Ctrl+C. With -show each decoded key is printed as well.
//
// Usage:
//
//	go build -o keystroke-test ./tools/keystroke-test
//	./keystroke-test [-show]
//
// Requirements:
//   - Linux: read access to /dev/input (the input group) or an X session
//   - macOS: Accessibility permission for the terminal
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"textreplacer/internal/keystroke"
)

func main() {
	show := flag.Bool("show", false, "Print every decoded key")
	flag.Parse()

	fmt.Println("Keyboard Hook Test")
	fmt.Println("==================")
	fmt.Println()

	src := keystroke.New()

	available, msg := src.Available()
	fmt.Printf("Hook availability: %s\n", msg)
	if !available {
		fmt.Println("ERROR: hook not available")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Print("Starting hook... ")
	if err := src.Start(ctx); err != nil {
		fmt.Printf("FAILED: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("OK")
	fmt.Println()
	fmt.Println("Listening. Press Ctrl+C to stop.")
	fmt.Println()
	fmt.Println("Time        | Chars | Control | Rate (keys/sec)")
	fmt.Println("------------|-------|---------|----------------")

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	startTime := time.Now()
	var chars, controls, lastTotal uint64
	lastTime := startTime
	events := src.Events()

loop:
	for {
		select {
		case <-ctx.Done():
			fmt.Println()
			fmt.Println("Received interrupt signal, stopping...")
			break loop

		case ev, ok := <-events:
			if !ok {
				fmt.Println("Event channel closed.")
				break loop
			}
			switch ev.Key.(type) {
			case keystroke.Character:
				chars++
			case keystroke.ControlKey:
				controls++
			}
			if *show {
				fmt.Printf("  key %-10s at %s\n", ev.Key, ev.When.Format("15:04:05.000"))
			}

		case now := <-ticker.C:
			total := chars + controls
			elapsed := now.Sub(lastTime).Seconds()

			var rate float64
			if elapsed > 0 {
				rate = float64(total-lastTotal) / elapsed
			}

			fmt.Printf("%11s | %5d | %7d | %.1f\n",
				now.Sub(startTime).Truncate(time.Second).String(),
				chars,
				controls,
				rate)

			lastTotal = total
			lastTime = now
		}
	}

	fmt.Print("Stopping hook... ")
	if err := src.Stop(); err != nil {
		fmt.Printf("FAILED: %v\n", err)
	} else {
		fmt.Println("OK")
	}

	fmt.Println()
	fmt.Println("Final Statistics")
	fmt.Println("----------------")
	fmt.Printf("Printable keys: %d\n", chars)
	fmt.Printf("Control keys:   %d\n", controls)
	fmt.Printf("Duration:       %s\n", time.Since(startTime).Truncate(time.Millisecond))
}
