// pkg/ui/ui_test.go
// TEST TYPE: Unit Tests
// DEPENDENCIES: None
// PURPOSE: Test renderer selection and the shared renderer contract

package ui_test

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/arthur-debert/omiros/pkg/errors"
	"github.com/arthur-debert/omiros/pkg/types"
	"github.com/arthur-debert/omiros/pkg/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() types.RunReport {
	fish := types.NewInstall(types.InstallTarget{Kind: types.KindFormula, ID: "fish"})
	return types.RunReport{
		Started:  time.Unix(1700000000, 0).UTC(),
		Duration: time.Second,
		Domains: []types.DomainReport{
			{Domain: types.DomainPackages, Outcomes: []types.RunOutcome{types.Succeeded(fish, time.Second)}},
		},
	}
}

func TestNewRenderer(t *testing.T) {
	for _, format := range []ui.Format{ui.FormatAuto, ui.FormatTerminal, ui.FormatText, ui.FormatJSON} {
		t.Run(format.String(), func(t *testing.T) {
			r, err := ui.NewRenderer(format, &bytes.Buffer{})
			require.NoError(t, err)
			assert.NotNil(t, r)
		})
	}

	r, err := ui.NewRenderer(ui.Format(999), &bytes.Buffer{})
	assert.Nil(t, r)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestNewRenderer_AutoOnBufferIsText(t *testing.T) {
	buf := &bytes.Buffer{}
	r, err := ui.NewRenderer(ui.FormatAuto, buf)
	require.NoError(t, err)

	require.NoError(t, r.RenderMessage("hello"))
	assert.Equal(t, "hello\n", buf.String())
}

func TestRenderers_RenderEverything(t *testing.T) {
	for _, format := range []ui.Format{ui.FormatTerminal, ui.FormatText, ui.FormatJSON} {
		t.Run(format.String(), func(t *testing.T) {
			buf := &bytes.Buffer{}
			r, err := ui.NewRenderer(format, buf)
			require.NoError(t, err)

			assert.NoError(t, r.RenderMessage("test message"))
			assert.NoError(t, r.RenderError(assert.AnError))
			assert.NoError(t, r.RenderReport(sampleReport()))
			assert.Contains(t, buf.String(), "fish")
		})
	}
}

func TestJSONRenderer_ReportIsValidJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	r, err := ui.NewRenderer(ui.FormatJSON, buf)
	require.NoError(t, err)
	require.NoError(t, r.RenderReport(sampleReport()))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, false, decoded["failed"])
}
