package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abel-rois666/Generador-Horarios-CUOM/internal/engine"
)

const catalogJSON = `{"catalog":{
	"degrees":[{"id":"D1","name":"ISC"}],
	"shifts":[{"id":"SH1","name":"Matutino","start":"07:00","end":"09:00","days":["Lunes","Martes"]}],
	"teachers":[{"id":"T1","name":"Ada","availability":[{"day":"Lunes","start":"07:00","end":"09:00"}],"canTeach":["S1"]}],
	"subjects":[{"id":"S1","name":"Algoritmos","hoursPerWeek":2,"degreeId":"D1","semester":1}],
	"groups":[{"id":"G1","name":"ISC 1A","shiftId":"SH1","degreeId":"D1","subjects":["S1"]}]
}}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunSolvesAndAuditsItsOwnOutput(t *testing.T) {
	dir := t.TempDir()
	catalogPath := writeFile(t, dir, "catalog.json", catalogJSON)
	entriesPath := filepath.Join(dir, "entries.csv")

	var out bytes.Buffer
	err := run(context.Background(), options{CatalogPath: catalogPath, EntriesOut: entriesPath, Engine: engine.Config{Workers: 1}}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "status=SOLVED entries=2")
	assert.Contains(t, out.String(), "no violations")

	written, err := os.ReadFile(entriesPath)
	require.NoError(t, err)
	assert.Contains(t, string(written), "Lunes,07:00,08:00,G1,ISC 1A,S1,Algoritmos,T1,Ada")

	out.Reset()
	err = run(context.Background(), options{CatalogPath: catalogPath, SchedulePath: entriesPath}, &out)
	require.NoError(t, err)
	assert.Equal(t, "no violations\n", out.String())
}

func TestRunReportsViolations(t *testing.T) {
	dir := t.TempDir()
	catalogPath := writeFile(t, dir, "catalog.json", catalogJSON)
	schedulePath := writeFile(t, dir, "schedule.json",
		`{"entries":[{"subjectId":"S1","teacherId":"T1","groupId":"G1","day":"Martes","start":"07:00","end":"08:00"}]}`)
	reportPath := filepath.Join(dir, "report.csv")

	var out bytes.Buffer
	err := run(context.Background(), options{CatalogPath: catalogPath, SchedulePath: schedulePath, ReportOut: reportPath}, &out)
	require.ErrorIs(t, err, errFindings)

	report, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	assert.Contains(t, string(report), "kind,message,entries,group_id,subject_id,teacher_id,cell")
	assert.Contains(t, string(report), "OUTSIDE_TEACHER_AVAILABILITY")
	assert.Contains(t, string(report), "HOURS_MISMATCH")
}

func TestRunRejectsBadInput(t *testing.T) {
	dir := t.TempDir()
	catalogPath := writeFile(t, dir, "catalog.json", catalogJSON)

	err := run(context.Background(), options{CatalogPath: filepath.Join(dir, "missing.json")}, &bytes.Buffer{})
	require.Error(t, err)

	badCSV := writeFile(t, dir, "bad.csv", "day,start,end,group_id,subject_id,teacher_id\nDomingo,07:00,08:00,G1,S1,T1\n")
	err = run(context.Background(), options{CatalogPath: catalogPath, SchedulePath: badCSV}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
}

func TestJoinInts(t *testing.T) {
	assert.Equal(t, "0 3", joinInts([]int{0, 3}))
	assert.Equal(t, "", joinInts(nil))
}
