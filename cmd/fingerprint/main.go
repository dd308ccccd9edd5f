// Command fingerprint is the CLI entry point for the acoustic fingerprinting
// engine: fingerprint a file, compare two files, fingerprint live
// microphone input, or serialize/deserialize a fingerprint to disk.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/media-luna/fingerprint/internal/audio"
	"github.com/media-luna/fingerprint/internal/config"
	"github.com/media-luna/fingerprint/internal/detective"
	fp "github.com/media-luna/fingerprint/internal/fingerprint"
	"github.com/media-luna/fingerprint/internal/fpconfig"
	"github.com/media-luna/fingerprint/internal/logging"
	"github.com/media-luna/fingerprint/internal/source"
)

func main() {
	file := flag.String("file", "", "path to the audio file to fingerprint")
	compare := flag.String("compare", "", "second audio file; compare it against -file")
	microphone := flag.Bool("microphone", false, "fingerprint live audio from the default input device")
	listen := flag.Duration("listen", 10*time.Second, "how long to capture from the microphone")
	out := flag.String("out", "", "write the serialized fingerprint to this path")
	load := flag.String("load", "", "load a serialized fingerprint instead of computing one")
	configPath := flag.String("config", "", "path to a YAML configuration file")
	compareRange := flag.Int("range", 0, "comparison range r in bits (0 = full subfingerprint)")
	flag.Parse()

	cfg := fpconfig.DefaultConfig()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			logging.Error(err)
			os.Exit(1)
		}
		cfg = loaded
	}

	r := *compareRange
	if r <= 0 {
		r = cfg.SubfingerprintBits()
	}

	switch {
	case *load != "":
		runLoad(*load)
	case *microphone:
		runMicrophone(cfg, *listen, *out)
	case *file != "" && *compare != "":
		runCompare(cfg, *file, *compare, r)
	case *file != "":
		runFingerprint(cfg, *file, *out)
	default:
		fmt.Fprintln(os.Stderr, "usage: fingerprint -file <path> [-out <path>] | -file <a> -compare <b> | -microphone | -load <path>")
		flag.Usage()
		os.Exit(1)
	}
}

func runFingerprint(cfg fpconfig.Config, path, out string) {
	result, err := fingerprintFile(cfg, path)
	if err != nil {
		logging.Error(err)
		os.Exit(1)
	}
	logging.Info(fmt.Sprintf("%s: %d subfingerprints (%d bytes)", path, result.Count(), result.ByteSize()))
	if out != "" {
		if err := dump(result, out); err != nil {
			logging.Error(err)
			os.Exit(1)
		}
	}
}

func runCompare(cfg fpconfig.Config, pathA, pathB string, r int) {
	a, err := fingerprintFile(cfg, pathA)
	if err != nil {
		logging.Error(err)
		os.Exit(1)
	}
	b, err := fingerprintFile(cfg, pathB)
	if err != nil {
		logging.Error(err)
		os.Exit(1)
	}
	score, err := a.Similarity(b, r)
	if err != nil {
		logging.Error(err)
		os.Exit(1)
	}
	fmt.Printf("similarity: %.4f\n", score)
}

func runMicrophone(cfg fpconfig.Config, listen time.Duration, out string) {
	mic, err := audio.OpenMicrophone(cfg.RecordingSampleRate)
	if err != nil {
		logging.Error(err)
		os.Exit(1)
	}
	defer mic.Close()

	resampled := audio.ResampleLive(mic, cfg.ProcessingSampleRate)

	d, err := detective.New(cfg)
	if err != nil {
		logging.Error(err)
		os.Exit(1)
	}
	if err := d.Start(resampled); err != nil {
		logging.Error(err)
		os.Exit(1)
	}

	deadline := time.Now().Add(listen)
	for time.Now().Before(deadline) {
		if err := d.Feed(); err != nil {
			logging.Error(err)
			break
		}
	}

	result, err := d.Stop()
	if err != nil {
		logging.Error(err)
		os.Exit(1)
	}
	logging.Info(fmt.Sprintf("captured %d subfingerprints", result.Count()))
	if out != "" {
		if err := dump(result, out); err != nil {
			logging.Error(err)
			os.Exit(1)
		}
	}
}

func runLoad(path string) {
	f, err := os.Open(path)
	if err != nil {
		logging.Error(err)
		os.Exit(1)
	}
	defer f.Close()

	result, err := fp.Deserialize(f)
	if err != nil {
		logging.Error(err)
		os.Exit(1)
	}
	fmt.Printf("loaded fingerprint: %d subfingerprints, %d bits each\n", result.Count(), 2*result.Length())
}

// fingerprintFile decodes path, fingerprints it while reporting progress on
// a progress bar, and returns the resulting fingerprint.
func fingerprintFile(cfg fpconfig.Config, path string) (*fp.Fingerprint, error) {
	fs, err := audio.OpenFile(path, cfg.ProcessingSampleRate)
	if err != nil {
		return nil, err
	}
	defer fs.Close()

	bar := progressbar.DefaultBytes(-1, fmt.Sprintf("fingerprinting %s", path))
	progressed := progressSource{Source: fs, bar: bar}

	d, err := detective.New(cfg)
	if err != nil {
		return nil, err
	}
	result, err := d.Process(progressed)
	bar.Finish()
	return result, err
}

func dump(result *fp.Fingerprint, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return result.Serialize(f)
}

// progressSource decorates a Source, reporting one bar tick per sample
// read. Kept in the CLI package: the core pipeline has no UI concerns.
type progressSource struct {
	source.Source
	bar *progressbar.ProgressBar
}

func (p progressSource) Next() (float32, error) {
	v, err := p.Source.Next()
	if err == nil {
		p.bar.Add(1)
	}
	return v, err
}
