package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/listing-parser/internal/normalizer"
)

func TestOptions_Validate(t *testing.T) {
	assert.NoError(t, Options{}.Validate())
	assert.NoError(t, Options{BlockStyle: "Letter"}.Validate())
	assert.Error(t, Options{BlockStyle: "roman"}.Validate())
	assert.Error(t, Options{MaxInputBytes: -1}.Validate())
}

func TestOptions_WithDefaults(t *testing.T) {
	o := Options{}.WithDefaults()
	assert.Equal(t, BlockStyleTitle, o.BlockStyle)
	assert.Equal(t, normalizer.DefaultMaxInputBytes, o.MaxInputBytes)

	o = Options{BlockStyle: " LETTER ", MaxInputBytes: 100}.WithDefaults()
	assert.Equal(t, BlockStyleLetter, o.BlockStyle)
	assert.Equal(t, 100, o.MaxInputBytes)
}

func TestFormatBlock(t *testing.T) {
	assert.Equal(t, "Block F", FormatBlock("f", BlockStyleTitle))
	assert.Equal(t, "f block", FormatBlock("f", BlockStyleLetter))
	assert.Empty(t, FormatBlock(" ", BlockStyleTitle))
}
