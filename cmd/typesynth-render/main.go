package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/cwbudde/typesynth/internal/wavio"
	"github.com/cwbudde/typesynth/preset"
	"github.com/cwbudde/typesynth/synth"
)

func main() {
	// Command-line flags
	text := flag.String("text", "hello world", "Text to type into the synth")
	interval := flag.Float64("interval", 0.15, "Seconds between keystrokes")
	tail := flag.Float64("tail", 2.0, "Seconds to render after the last keystroke")
	decayDBFS := flag.Float64("decay-dbfs", math.Inf(1), "Auto-stop when stereo block RMS falls below this dBFS (e.g. -90). Disabled by default")
	decayHoldBlocks := flag.Int("decay-hold-blocks", 6, "Consecutive below-threshold blocks required to stop in auto-decay mode")
	maxDuration := flag.Float64("max-duration", 60.0, "Maximum render duration in seconds when using -decay-dbfs")
	sampleRate := flag.Int("sample-rate", 44100, "Render sample rate in Hz")
	presetPath := flag.String("preset", "", "Preset JSON file path (optional)")
	output := flag.String("output", "output.wav", "Output WAV file path")
	flag.Parse()

	if len(*text) == 0 {
		fmt.Fprintln(os.Stderr, "Error: -text must not be empty")
		os.Exit(1)
	}
	if *interval < 0 {
		*interval = 0
	}

	settings := preset.DefaultSettings()
	if *presetPath != "" {
		loaded, err := preset.LoadJSON(*presetPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading preset %q: %v\n", *presetPath, err)
			os.Exit(1)
		}
		settings = loaded
	}

	engine := synth.NewAudioEngine(*sampleRate)
	if err := engine.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error starting engine: %v\n", err)
		os.Exit(1)
	}
	settings.Apply(engine)

	runes := []rune(*text)
	lastKeyTime := float64(len(runes)-1) * (*interval)

	autoStop := !math.IsInf(*decayDBFS, 1)
	minFrames := int(float64(*sampleRate) * (lastKeyTime + *tail))
	maxFrames := minFrames
	if autoStop {
		maxFrames = int(float64(*sampleRate) * (*maxDuration))
		if maxFrames < minFrames {
			maxFrames = minFrames
		}
	}

	fmt.Printf("Rendering %d keystrokes (%.2fs of typing) at %d Hz...\n", len(runes), lastKeyTime, *sampleRate)

	blockSize := 128
	thresholdLin := math.Pow(10.0, *decayDBFS/20.0)
	if *decayHoldBlocks < 1 {
		*decayHoldBlocks = 1
	}

	samples := make([]float32, 0, minFrames*2)
	framesRendered := 0
	nextKey := 0
	belowCount := 0

	for framesRendered < maxFrames {
		framesToRender := blockSize
		if framesRendered+framesToRender > maxFrames {
			framesToRender = maxFrames - framesRendered
		}

		// Fire keystrokes whose schedule time falls inside this block.
		blockEnd := float64(framesRendered+framesToRender) / float64(*sampleRate)
		for nextKey < len(runes) && float64(nextKey)*(*interval) < blockEnd {
			if err := engine.PlayKey(runes[nextKey]); err != nil {
				fmt.Fprintf(os.Stderr, "Error playing %q: %v\n", runes[nextKey], err)
				os.Exit(1)
			}
			nextKey++
		}

		block := engine.Process(framesToRender)
		samples = append(samples, block...)
		framesRendered += framesToRender

		if autoStop && nextKey >= len(runes) && framesRendered >= minFrames {
			if wavio.StereoRMS(block) < thresholdLin {
				belowCount++
				if belowCount >= *decayHoldBlocks {
					break
				}
			} else {
				belowCount = 0
			}
		}
	}

	if autoStop {
		fmt.Printf("Auto-stop at %d frames (%.3fs), threshold %.1f dBFS\n", framesRendered, float64(framesRendered)/float64(*sampleRate), *decayDBFS)
	}

	if err := wavio.WriteStereoInterleavedWAV(*output, samples, *sampleRate); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing WAV file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully wrote %s (%d frames, %d voice steals)\n", *output, framesRendered, engine.StolenVoices())
}
