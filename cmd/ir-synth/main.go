package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/cwbudde/typesynth/internal/wavio"
	"github.com/cwbudde/typesynth/irsynth"
)

func main() {
	cfg := irsynth.DefaultConfig()

	output := flag.String("output", "assets/ir/reverb.wav", "Output WAV path")
	flag.IntVar(&cfg.SampleRate, "sample-rate", cfg.SampleRate, "Output sample rate")
	flag.Float64Var(&cfg.DurationS, "duration", cfg.DurationS, "IR length in seconds")
	flag.Float64Var(&cfg.Decay, "decay", cfg.Decay, "Envelope exponent (>0, larger = faster decay)")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed")
	flag.Float64Var(&cfg.NormalizePeak, "peak", cfg.NormalizePeak, "Normalization peak (>0)")
	flag.Parse()

	left, right, err := irsynth.GenerateStereo(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ir-synth error: %v\n", err)
		os.Exit(1)
	}

	if err := wavio.WriteStereoWAVLR(*output, left, right, cfg.SampleRate); err != nil {
		fmt.Fprintf(os.Stderr, "wav write error: %v\n", err)
		os.Exit(1)
	}

	peak, rms := stats(left, right)
	fmt.Printf("Wrote %s\n", *output)
	fmt.Printf("SampleRate: %d Hz, Duration: %.3f s, Samples: %d\n", cfg.SampleRate, cfg.DurationS, len(left))
	fmt.Printf("Peak: %.6f, RMS: %.6f\n", peak, rms)
}

func stats(left []float32, right []float32) (peak float64, rms float64) {
	if len(left) == 0 || len(right) == 0 {
		return 0, 0
	}
	var sum float64
	n := len(left) * 2
	for i := 0; i < len(left); i++ {
		lv := float64(left[i])
		rv := float64(right[i])
		a := math.Abs(lv)
		if b := math.Abs(rv); b > a {
			a = b
		}
		if a > peak {
			peak = a
		}
		sum += lv*lv + rv*rv
	}
	return peak, math.Sqrt(sum / float64(n))
}
