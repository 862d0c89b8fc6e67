package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelection(t *testing.T) {
	page, err := ParseString(`<div class="card">
		<a class="link" title=" A title ">
			first
			line
		</a>
		<a class="link">second</a>
	</div>`)
	require.NoError(t, err)

	card, ok := page.Find(".card")
	require.True(t, ok)

	link, ok := card.Find(".link")
	require.True(t, ok)
	assert.Equal(t, "first line", link.Text())

	title, ok := link.Attr("title")
	assert.True(t, ok)
	assert.Equal(t, "A title", title)

	_, ok = link.Attr("href")
	assert.False(t, ok)

	links := card.FindAll(".link")
	require.Len(t, links, 2)
	assert.Equal(t, "second", links[1].Text())

	_, ok = card.Find(".missing")
	assert.False(t, ok)
	assert.Empty(t, card.FindAll(".missing"))
}

func TestAdjacentSiblingSelector(t *testing.T) {
	page, err := ParseString(`<ul class="a-pagination">
		<li class="a-normal"><a href="?startIndex=0">1</a></li>
		<li class="a-selected"><a href="?startIndex=10">2</a></li>
		<li class="a-normal"><a href="?startIndex=20">3</a></li>
	</ul>`)
	require.NoError(t, err)

	next, ok := page.Find(".a-pagination .a-selected + li a")
	require.True(t, ok)
	href, _ := next.Attr("href")
	assert.Equal(t, "?startIndex=20", href)
}
