package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/starscape/pkg/catalog"
	"github.com/matzehuels/starscape/pkg/pipeline"
)

// smallRun keeps a full pipeline run well under a second.
var smallRun = []string{
	"--seed", "7",
	"--grid", "8x16x16",
	"--chunk", "8x8x8",
	"--feature", "8,16,16",
	"--workers", "2",
	"--cutoff", "0.3",
	"--radius", "3",
	"--stride", "1,3,3",
	"--count", "60",
	"--no-cache",
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newTestCLI().RootCommand()
	for _, name := range []string{"generate", "field", "cache", "completion"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestGenerateCommand(t *testing.T) {
	out := t.TempDir()
	metrics := filepath.Join(out, "starscape.prom")

	root := newTestCLI().RootCommand()
	args := append([]string{"generate"}, smallRun...)
	args = append(args, "--out", out, "--render", "--scale", "2", "--exposure", "80", "--distance", "2",
		"--metrics-file", metrics, "-q")
	root.SetArgs(args)
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("generate: %v", err)
	}

	cat, err := catalog.Load(filepath.Join(out, catalog.FileName))
	if err != nil {
		t.Fatalf("catalog not written: %v", err)
	}
	if len(cat.Stars) != 60 {
		t.Errorf("catalog stars = %d, want 60", len(cat.Stars))
	}
	if cat.Options.Seed != 7 {
		t.Errorf("catalog seed = %d, want 7", cat.Options.Seed)
	}

	for _, name := range []string{fileDensity, fileClusters, fileStars, fileHR} {
		info, err := os.Stat(filepath.Join(out, name))
		if err != nil {
			t.Errorf("%s not written: %v", name, err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("%s is empty", name)
		}
	}

	data, err := os.ReadFile(metrics)
	if err != nil {
		t.Fatalf("metrics not written: %v", err)
	}
	if !strings.Contains(string(data), `stage="stars"`) {
		t.Errorf("metrics should cover the stars stage:\n%s", data)
	}
}

func TestGenerateCommandInvalidOptions(t *testing.T) {
	root := newTestCLI().RootCommand()
	args := append([]string{"generate"}, smallRun...)
	args = append(args, "--grid", "9x16x16", "--out", t.TempDir(), "-q")
	root.SetArgs(args)
	if err := root.ExecuteContext(context.Background()); err == nil {
		t.Error("indivisible grid should fail")
	}
}

func TestGenerateCommandCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	root := newTestCLI().RootCommand()
	args := append([]string{"generate"}, smallRun...)
	args = append(args, "--out", t.TempDir(), "-q")
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err == nil {
		t.Error("cancelled run should fail")
	}
}

func TestFieldCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "field.raw")

	root := newTestCLI().RootCommand()
	root.SetArgs([]string{"field",
		"--seed", "3", "--grid", "8x16x16", "--chunk", "8x8x8", "--feature", "8,16,16",
		"--no-cache", "--out", path, "--png", "--scale", "2"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("field: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("field file not written: %v", err)
	}
	if info.Size() != 8*8*16*16 {
		t.Errorf("field file size = %d, want %d", info.Size(), 8*8*16*16)
	}
	if _, err := os.Stat(filepath.Join(dir, "field.png")); err != nil {
		t.Errorf("projection not written: %v", err)
	}

	// A generate run reuses the written field.
	opts := pipeline.Options{
		Seed: 3, Grid: [3]int{8, 16, 16}, Chunk: [3]int{8, 8, 8}, Feature: [3]float64{8, 16, 16},
		Cutoff: 0.3, Radius: 3, Stride: [3]int{1, 3, 3}, Count: 10, FieldPath: path,
	}
	res, err := pipeline.NewRunner(nil, nil, nil).Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheInfo.FieldSource != pipeline.SourceFile {
		t.Errorf("field source = %s, want %s", res.CacheInfo.FieldSource, pipeline.SourceFile)
	}
}

func TestRenderImagesViewOptions(t *testing.T) {
	opts := pipeline.Options{
		Seed: 7, Grid: [3]int{8, 16, 16}, Chunk: [3]int{8, 8, 8}, Feature: [3]float64{8, 16, 16},
		Cutoff: 0.3, Radius: 3, Stride: [3]int{1, 3, 3}, Count: 40,
	}
	res, err := pipeline.NewRunner(nil, nil, nil).Execute(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}

	read := func(dir, name string) []byte {
		t.Helper()
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			t.Fatal(err)
		}
		return data
	}

	dim, bright := t.TempDir(), t.TempDir()
	if _, err := renderImages(dim, res, imageOptions{Scale: 2, Exposure: 1e-9}); err != nil {
		t.Fatal(err)
	}
	if _, err := renderImages(bright, res, imageOptions{Scale: 2, Exposure: 1e9, Distance: 3}); err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(read(dim, fileStars), read(bright, fileStars)) {
		t.Error("exposure should change the star field")
	}
	if bytes.Equal(read(dim, fileDensity), read(bright, fileDensity)) {
		t.Error("distance should switch the density projection to an inverse-square sum")
	}
}
