package sanitize

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlainText(t *testing.T) {
	require.Equal(t, "Hoppy & bitter", PlainText("<p>Hoppy &amp; bitter</p>"))
	require.Equal(t, "Too sweet", PlainText(` <img src=x onerror="alert(1)">Too sweet `))
	require.Equal(t, "", PlainText(`<script>alert("x")</script>`))
	require.Equal(t, "", PlainText(""))
}
