package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMatchesScriptConstants(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 128, cfg.Classifier.ImageSize)
	assert.Equal(t, 0.8, cfg.Classifier.TrainRatio)
	assert.Equal(t, "performance_plot.png", cfg.Classifier.PlotPath)
	assert.Equal(t, [3]float32{0.485, 0.456, 0.406}, cfg.Classifier.Mean)

	assert.Equal(t, 64, cfg.GAN.ImageSize)
	assert.Equal(t, 100, cfg.GAN.LatentDim)
	assert.Equal(t, 10, cfg.GAN.Patience)
	assert.Equal(t, 10, cfg.GAN.SnapshotEvery)
	assert.Empty(t, cfg.GAN.CheckpointPath)
}

func TestParseOverridesDefaults(t *testing.T) {
	doc := `
classifier:
  epochs: 3
  device: webgpu
gan:
  patience: 4
  latent_dim: 32
`
	cfg, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Classifier.Epochs)
	assert.Equal(t, DeviceWebGPU, cfg.Classifier.Device)
	assert.Equal(t, 32, cfg.Classifier.BatchSize, "untouched keys keep defaults")
	assert.Equal(t, 4, cfg.GAN.Patience)
	assert.Equal(t, 32, cfg.GAN.LatentDim)
}

func TestParseEmptyDocument(t *testing.T) {
	cfg, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse(strings.NewReader("classifier:\n  epochz: 3\n"))
	require.Error(t, err)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("gan:\n  max_epochs: 7\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.GAN.MaxEpochs)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestClassifierValidate(t *testing.T) {
	realDir, forgedDir := t.TempDir(), t.TempDir()
	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, nil, 0o600))

	base := Default().Classifier
	base.RealDir, base.ForgedDir = realDir, forgedDir

	tests := []struct {
		name   string
		mutate func(c *Classifier)
		field  string
	}{
		{"valid", func(c *Classifier) {}, ""},
		{"missing real dir", func(c *Classifier) { c.RealDir = filepath.Join(realDir, "nope") }, "classifier.real_dir"},
		{"empty forged dir", func(c *Classifier) { c.ForgedDir = "" }, "classifier.forged_dir"},
		{"file instead of dir", func(c *Classifier) { c.ForgedDir = file }, "classifier.forged_dir"},
		{"bad image size", func(c *Classifier) { c.ImageSize = 100 }, "classifier.image_size"},
		{"zero epochs", func(c *Classifier) { c.Epochs = 0 }, "classifier.epochs"},
		{"ratio out of range", func(c *Classifier) { c.TrainRatio = 1 }, "classifier.train_ratio"},
		{"zero std", func(c *Classifier) { c.Std[1] = 0 }, "classifier.std"},
		{"unknown device", func(c *Classifier) { c.Device = "tpu" }, "classifier.device"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			err := c.Validate()
			if tt.field == "" {
				require.NoError(t, err)
				return
			}
			var cfgErr *ConfigurationError
			require.True(t, errors.As(err, &cfgErr), "got %v", err)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestGANValidate(t *testing.T) {
	g := Default().GAN
	g.ImageDir = t.TempDir()
	require.NoError(t, g.Validate())

	g.Patience = 0
	var cfgErr *ConfigurationError
	require.ErrorAs(t, g.Validate(), &cfgErr)
	assert.Equal(t, "gan.patience", cfgErr.Field)

	g = Default().GAN
	g.ImageDir = filepath.Join(t.TempDir(), "absent")
	require.ErrorAs(t, g.Validate(), &cfgErr)
	assert.Equal(t, "gan.image_dir", cfgErr.Field)
	assert.Contains(t, cfgErr.Error(), "does not exist")
}

func TestValidateForPredict(t *testing.T) {
	c := Default().Classifier
	c.RealDir, c.ForgedDir = t.TempDir(), t.TempDir()
	require.NoError(t, c.ValidateForPredict())

	c.CheckpointPath = ""
	require.Error(t, c.ValidateForPredict())
}
