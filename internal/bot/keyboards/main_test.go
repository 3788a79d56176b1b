package keyboards

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuickAddMenuSkipsOversizedNames(t *testing.T) {
	markup := QuickAddMenu([]string{"Flu", strings.Repeat("x", maxCallbackData)})

	require.Len(t, markup.InlineKeyboard, 2)
	button := markup.InlineKeyboard[0][0]
	assert.Equal(t, "Flu", button.Text)
	require.NotNil(t, button.CallbackData)
	assert.Equal(t, "qa:Flu", *button.CallbackData)
	assert.Equal(t, DataVaccines, *markup.InlineKeyboard[1][0].CallbackData)
}

func TestTimelineMenuMarksCurrentWindow(t *testing.T) {
	markup := TimelineMenu(14)

	var marked []string
	for _, row := range markup.InlineKeyboard {
		for _, b := range row {
			if strings.HasPrefix(b.Text, "•") {
				marked = append(marked, *b.CallbackData)
			}
		}
	}
	assert.Equal(t, []string{"tl:14"}, marked)
}
