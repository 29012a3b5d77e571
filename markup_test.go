package project747

import (
	"testing"

	"github.com/Michiel29/project747/types"
	"github.com/stretchr/testify/assert"
)

func TestCleanScript(t *testing.T) {
	raw := "<script type=x>var a;</script><b>INT. HOUSE</b> " +
		"<font color=red>night</font>\n<pre>FADE IN:</pre><BR>"
	assert.Equal(t, "INT. HOUSE night\nFADE IN:", CleanScript(raw))
}

var extractBodyTests = []struct {
	Name     string
	Kind     types.Kind
	Text     string
	StartTag string
	EndTag   string
	Expected string
}{
	{"gutenberg possessives",
		types.KindGutenberg,
		"header START OF BOOK it 's Tom 's story END OF BOOK license",
		"START OF BOOK", "END OF BOOK",
		"START OF BOOK it s Tom s story "},
	{"movie start tag apostrophes",
		types.KindMovie,
		"x A MAN 'S WORLD body 's here THE END y THE END z",
		"A MAN S WORLD", "THE END",
		"A MAN 'S WORLD body 's here THE END y "},
	{"end tag before start is ignored",
		types.KindGutenberg,
		"FIN intro BEGIN story FIN",
		"BEGIN", "FIN",
		"BEGIN story "},
}

func TestExtractBody(t *testing.T) {
	for _, test := range extractBodyTests {
		body, err := ExtractBody(test.Kind, test.Text, test.StartTag,
			test.EndTag)
		assert.NoError(t, err, test.Name)
		assert.Equal(t, test.Expected, body, test.Name)
	}
}

func TestExtractBodyEmptyRegion(t *testing.T) {
	_, err := ExtractBody(types.KindGutenberg, "some text", "MISSING", "text")
	assert.ErrorIs(t, err, ErrEmptyRegion)
	_, err = ExtractBody(types.KindGutenberg, "START body", "START", "END")
	assert.ErrorIs(t, err, ErrEmptyRegion)
	_, err = ExtractBody(types.KindGutenberg, "a TAG b", "TAG", "TAG")
	assert.ErrorIs(t, err, ErrEmptyRegion)
	_, err = ExtractBody(types.KindMovie, "a b", "", "b")
	assert.ErrorIs(t, err, ErrEmptyRegion)
}
