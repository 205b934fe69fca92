package report

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/forgery/internal/train"
)

func TestConsoleClassifierTable(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.ClassifierEpoch(train.ClassifierEpoch{Epoch: 1, TrainLoss: 0.6931, TrainAcc: 50, ValLoss: 0.7, ValAcc: 40}, 2)
	c.ClassifierEpoch(train.ClassifierEpoch{Epoch: 2, TrainLoss: 0.5, TrainAcc: 75, ValLoss: 0.55, ValAcc: 80}, 2)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4, "header, rule and one row per epoch")
	assert.Contains(t, lines[0], "Train Loss")
	assert.Contains(t, lines[2], "1/2")
	assert.Contains(t, lines[2], "0.6931")
	assert.Contains(t, lines[3], "75.00%")
	assert.Contains(t, lines[3], "80.00%")
}

func TestConsoleGANLine(t *testing.T) {
	var buf bytes.Buffer
	NewConsole(&buf).GANEpoch(train.GANEpoch{Epoch: 3, DLoss: 1.25, GLoss: 0.5}, 200)
	assert.Equal(t, "[Epoch 3/200] [D loss: 1.2500] [G loss: 0.5000]\n", buf.String())
}

func TestPrintPrediction(t *testing.T) {
	var buf bytes.Buffer
	PrintPrediction(&buf, train.Prediction{Source: "a.png", Predicted: train.LabelForged, Actual: train.LabelReal})
	assert.Equal(t, "a.png: Predicted: Forged, Actual: Real\n", buf.String())
}

func TestSummaries(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	h := &train.History[train.ClassifierEpoch]{}
	h.Append(train.ClassifierEpoch{Epoch: 1, ValAcc: 60})
	h.Append(train.ClassifierEpoch{Epoch: 2, ValAcc: 90})
	h.Append(train.ClassifierEpoch{Epoch: 3, ValAcc: 70, ValLoss: 0.4})
	c.ClassifierSummary(h)
	assert.Contains(t, buf.String(), "Best:  epoch 2, val acc 90.00%")
	assert.Contains(t, buf.String(), "val loss 0.4000")

	buf.Reset()
	g := &train.History[train.GANEpoch]{}
	g.Append(train.GANEpoch{Epoch: 1, GLoss: 3})
	g.Append(train.GANEpoch{Epoch: 2, GLoss: 1})
	g.Append(train.GANEpoch{Epoch: 3, GLoss: 2})
	c.GANSummary(&train.GANResult{History: g, Reason: train.StopEarly})
	assert.Equal(t, "Stopped after 3 epochs (early stopping); best G loss 1.0000 at epoch 2\n", buf.String())
}

func TestSavePerformancePlot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "performance_plot.png")
	entries := []train.ClassifierEpoch{
		{Epoch: 1, TrainLoss: 0.7, TrainAcc: 50, ValLoss: 0.71, ValAcc: 48},
		{Epoch: 2, TrainLoss: 0.5, TrainAcc: 70, ValLoss: 0.6, ValAcc: 65},
		{Epoch: 3, TrainLoss: 0.3, TrainAcc: 88, ValLoss: 0.5, ValAcc: 75},
	}
	require.NoError(t, SavePerformancePlot(entries, path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Greater(t, cfg.Width, cfg.Height, "two panels side by side")

	assert.Error(t, SavePerformancePlot(nil, path))
}

func TestSaveGANLossPlot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gan_loss_plot.png")
	entries := []train.GANEpoch{{Epoch: 1, DLoss: 1.3, GLoss: 0.8}, {Epoch: 2, DLoss: 1.1, GLoss: 0.9}}
	require.NoError(t, SaveGANLossPlot(entries, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestGridWriter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "samples")
	g := &GridWriter{Dir: dir, Size: 2}

	// 3 images of 2x2: first all -1 (black), second all +1 (white), third 0.
	pixels := make([]float32, 3*3*4)
	for i := 0; i < 12; i++ {
		pixels[i] = -1
		pixels[12+i] = 1
	}
	require.NoError(t, g.Snapshot(7, pixels, 3))

	f, err := os.Open(filepath.Join(dir, "epoch_007.png"))
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)

	// ceil(sqrt(3)) = 2 columns, 2 rows, 2px padding.
	assert.Equal(t, 2*2+3*gridPad, img.Bounds().Dx())
	assert.Equal(t, 2*2+3*gridPad, img.Bounds().Dy())

	r, _, _, _ := img.At(gridPad, gridPad).RGBA()
	assert.Equal(t, uint32(0), r)
	r, _, _, _ = img.At(2*gridPad+2, gridPad).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	r, _, _, _ = img.At(gridPad, 2*gridPad+2).RGBA()
	assert.Equal(t, uint32(128*0x101), r)

	assert.Error(t, g.Snapshot(8, pixels[:10], 3))
}

func TestDenormalizeClamps(t *testing.T) {
	assert.Equal(t, uint8(0), denormalize(-3))
	assert.Equal(t, uint8(255), denormalize(2))
	assert.Equal(t, uint8(128), denormalize(0))
}
