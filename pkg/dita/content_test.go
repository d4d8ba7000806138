package dita_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/marytreat/pkg/core"
	"github.com/aretw0/marytreat/pkg/dita"
)

const conceptXML = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE concept PUBLIC "-//OASIS//DTD DITA Concept//EN" "concept.dtd">
<concept id="c1" outputclass="explanation">
  <title>Printing <b>the</b> manual</title>
  <conbody>
    <p>See <xref href="other.dita#other/sec">other</xref> and <xref href="https://example.com" scope="external">web</xref>.</p>
    <table><tgroup cols="1"/></table>
    <draft-comment>fix me</draft-comment>
  </conbody>
</concept>
`

func parse(t *testing.T, s string) *dita.Content {
	t.Helper()
	c, err := dita.ParseBytes([]byte(s))
	require.NoError(t, err)
	return c
}

func TestContent_HeaderRoundTrip(t *testing.T) {
	c := parse(t, conceptXML)

	assert.Equal(t, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<!DOCTYPE concept PUBLIC \"-//OASIS//DTD DITA Concept//EN\" \"concept.dtd\">\n", c.Header())

	out, err := c.Bytes()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), c.Header()), "header must survive a write:\n%s", out)

	again := parse(t, string(out))
	assert.Equal(t, c.Title(), again.Title())
}

func TestContent_WritePreservesWhitespace(t *testing.T) {
	out, err := parse(t, conceptXML).Bytes()
	require.NoError(t, err)
	assert.Contains(t, string(out), "\n  <title>Printing <b>the</b> manual</title>\n  <conbody>\n    <p>See ")
	assert.Contains(t, string(out), "\n  </conbody>\n</concept>")
}

func TestContent_DeclarationAddedOnWrite(t *testing.T) {
	c := parse(t, `<map><title>M</title></map>`)
	assert.Empty(t, c.Header())

	out, err := c.Bytes()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), `<?xml version="1.0" encoding="UTF-8"?>`))
}

func TestContent_InvalidXML(t *testing.T) {
	_, err := dita.ParseBytes([]byte(`<concept><title>x</concept>`))
	assert.Error(t, err)
}

func TestContent_NbspEntity(t *testing.T) {
	c := parse(t, `<concept><title>A&nbsp;B</title></concept>`)
	assert.Equal(t, "A B", c.Title())
}

func TestContent_TitleAndShortdesc(t *testing.T) {
	c := parse(t, conceptXML)

	assert.Equal(t, "Printing the manual", c.Title())
	assert.False(t, c.TitleMissing())
	assert.True(t, c.ShortdescMissing())

	assert.True(t, c.EnsureShortdesc())
	assert.False(t, c.EnsureShortdesc(), "second call must not add another element")

	children := c.Root().ChildElements()
	require.GreaterOrEqual(t, len(children), 2)
	assert.Equal(t, "title", children[0].Tag)
	assert.Equal(t, "shortdesc", children[1].Tag)

	c.SetShortdesc("Follow these recommendations.")
	assert.Equal(t, "Follow these recommendations.", c.Shortdesc())
	assert.False(t, c.ShortdescMissing())

	c.SetTitle("Other")
	assert.Equal(t, "Other", c.Title())
}

func TestContent_BlankTitleIsMissing(t *testing.T) {
	c := parse(t, "<concept><title> \n </title></concept>")
	assert.True(t, c.TitleMissing())
}

func TestContent_OutputclassAndType(t *testing.T) {
	c := parse(t, conceptXML)
	assert.Equal(t, core.ClassExplanation, c.Outputclass())

	c.SetOutputclass(core.ClassContext)
	assert.Equal(t, core.ClassContext, c.Outputclass())

	tests := []struct {
		xml  string
		want core.OutputClass
	}{
		{`<task><title>t</title></task>`, core.ClassProcedure},
		{`<reference><title>r</title></reference>`, core.ClassReferenceInformation},
		{`<concept><title>c</title></concept>`, core.ClassExplanation},
		{`<topic><title>x</title></topic>`, core.ClassExplanation},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parse(t, tt.xml).DetectType(), tt.xml)
	}

	assert.True(t, parse(t, `<task/>`).IsTopic())
	assert.False(t, parse(t, `<topic/>`).IsTopic())
}

func TestContent_DraftComments(t *testing.T) {
	c := parse(t, conceptXML)
	assert.True(t, c.HasDraftComments())
	assert.Len(t, c.DraftComments(), 1)
}

func TestContent_AddNbspAfterTables(t *testing.T) {
	c := parse(t, conceptXML)
	assert.Equal(t, 1, c.AddNbspAfterTables())
	assert.Equal(t, 0, c.AddNbspAfterTables(), "spacer already present")
}

func TestContent_RemoveTaskContext(t *testing.T) {
	c := parse(t, `<task><title>T</title><taskbody><context><p>c</p></context><steps/></taskbody></task>`)
	assert.True(t, c.RemoveTaskContext())
	assert.Nil(t, c.Root().FindElement(".//context"))
	assert.False(t, c.RemoveTaskContext())

	assert.False(t, parse(t, conceptXML).RemoveTaskContext())
}
