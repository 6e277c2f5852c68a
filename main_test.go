package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"airbnb-dashboard/config"
	"airbnb-dashboard/utils"
)

func testApp(t *testing.T) *app {
	t.Helper()
	cfg := config.FromEnv()
	cfg.DataSource = config.SourceCSV
	cfg.DataPath = filepath.Join("data", "listings.csv")
	cfg.ViewsPath = ""
	cfg.MaxConcurrency = 2
	return &app{cfg: cfg, logger: utils.Discard()}
}

func TestReportCommand(t *testing.T) {
	color.NoColor = true
	cmd := testApp(t).reportCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"price", "--country", "Portugal"})

	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "PRICE ANALYSIS AND VISUALIZATION")
	assert.Contains(t, out.String(), "country=Portugal")
}

func TestReportCommandUnknownView(t *testing.T) {
	cmd := testApp(t).reportCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"nope"})
	assert.Error(t, cmd.ExecuteContext(context.Background()))
}

func TestExportCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "dashboard.xlsx")
	cmd := testApp(t).exportCmd()
	cmd.SetArgs([]string{"availability", "--out", out, "--year", "2019"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), "Summary")
	assert.Greater(t, len(f.GetSheetList()), 1)
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	_, err := openViewWriter(filepath.Join(t.TempDir(), "out.json"))
	assert.Error(t, err)
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	cmd := testApp(t).renderCmd()
	cmd.SetArgs([]string{"price", "--dir", dir})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	for _, name := range []string{"price_price-by-property-type.png", "price_seasonal-price.png", "price_price-correlation.png"} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Positive(t, info.Size())
	}
	_, err := os.Stat(filepath.Join(dir, "price_price-outliers.png"))
	assert.True(t, os.IsNotExist(err), "tables are not drawn")
}

func TestMissingDataFileFails(t *testing.T) {
	a := testApp(t)
	a.cfg.DataPath = filepath.Join(t.TempDir(), "missing.csv")
	cmd := a.reportCmd()
	cmd.SetOut(&bytes.Buffer{})
	assert.Error(t, cmd.ExecuteContext(context.Background()))
}
