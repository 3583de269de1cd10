package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/gaurav-prasanna/bulletinpipe/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportCountsAndSort(t *testing.T) {
	r := New(core.ProfileEmail)
	r.Add(Issue{Severity: Warning, Code: "style-block", Message: "b", Offset: 40})
	r.Add(Issue{Severity: Error, Code: "script-present", Message: "a", Offset: 10})
	r.Add(Issue{Severity: Error, Code: "event-handler", Message: "c", Offset: 10})
	r.Sort()

	require.Len(t, r.Issues, 3)
	assert.Equal(t, "event-handler", r.Issues[0].Code)
	assert.Equal(t, "script-present", r.Issues[1].Code)
	assert.Equal(t, "style-block", r.Issues[2].Code)

	assert.Equal(t, 2, r.ErrorCount())
	assert.Equal(t, 1, r.WarningCount())
	assert.False(t, r.Passed())
	assert.True(t, r.Has("style-block"))
	assert.Len(t, r.Errors(), 2)
	assert.Len(t, r.ByCode("script-present"), 1)
}

func TestReportWriteText(t *testing.T) {
	r := New(core.ProfileWeb)
	var buf bytes.Buffer
	r.WriteText(&buf)
	assert.Contains(t, buf.String(), "No errors or warnings detected (web)")

	r.Add(Issue{Severity: Error, Code: "doctype-missing", Message: "no doctype", Location: "1:1"})
	buf.Reset()
	r.WriteText(&buf)
	assert.Contains(t, buf.String(), "ERROR(doctype-missing): no doctype [1:1]")
	assert.Contains(t, buf.String(), "Errors: 1, Warnings: 0")
}

func TestReportWriteJSON(t *testing.T) {
	r := New(core.ProfileEmail)
	var buf bytes.Buffer
	require.NoError(t, r.WriteJSON(&buf))

	var out JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.True(t, out.Passed)
	assert.Equal(t, core.ProfileEmail, out.Profile)
	assert.NotNil(t, out.Issues)

	r.Add(Warn("css-float", "float used"))
	buf.Reset()
	require.NoError(t, r.WriteJSON(&buf))
	assert.Contains(t, buf.String(), `"warning_count": 1`)
	assert.NotContains(t, buf.String(), "Offset")
}
