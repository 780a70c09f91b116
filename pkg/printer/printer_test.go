package printer_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/anivanovic/codestats/pkg/printer"
)

func TestPrinter(t *testing.T) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	p := printer.New(out, errOut)

	p.Info("chart\n")
	p.Infof("%d rows\n", 2)
	p.Errorf("code %d\n", 3)

	assert.Equal(t, "chart\n2 rows\n", out.String())
	assert.Equal(t, "code 3\n", errOut.String())
}
