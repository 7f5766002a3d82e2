package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAppendResultZeroValueIsFailure(t *testing.T) {
	var r AppendResult
	assert.Equal(t, AppendFailed, r)
	assert.Equal(t, "failed", r.String())
	assert.Equal(t, "appended", Appended.String())
	assert.Equal(t, "skipped-duplicate", SkippedDuplicate.String())
}

func TestObservationString(t *testing.T) {
	d, _ := NewDate(2024, 3, 1)
	o := Observation{Date: d, Price: decimal.RequireFromString("101.25")}
	assert.Equal(t, "2024-03-01 101.2500", o.String())
}
