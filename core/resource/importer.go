package resource

import (
	"strings"

	"github.com/pkg/errors"
)

// PathSeparator separates folder labels in the path column of an import row.
const PathSeparator = "/"

// importColumns are the columns of an import row after the path column.
var importColumns = []MediaKind{MediaPDF, MediaAudio, MediaVideo, MediaImage}

// TreeFromRows builds category items from rows of the form
// `path | pdf | audio | video | image`, e.g. `Unit 1 / Lesson 1 | https://...pdf`.
// Intermediate folders are created on first use; a header row whose first cell is
// "path" is skipped. Row order is kept.
func TreeFromRows(rows [][]string) ([]Node, error) {
	items := []Node{}
	for i, row := range rows {
		if len(row) == 0 || strings.TrimSpace(strings.Join(row, "")) == "" {
			continue
		}
		if i == 0 && strings.EqualFold(strings.TrimSpace(row[0]), "path") {
			continue
		}

		var labels []string
		for _, l := range strings.Split(row[0], PathSeparator) {
			if l = strings.TrimSpace(l); l != "" {
				labels = append(labels, l)
			}
		}
		if len(labels) == 0 {
			return nil, errors.Errorf("row %d: empty path", i+1)
		}

		var media MediaSet
		for c, kind := range importColumns {
			if c+1 < len(row) {
				media = media.With(kind, strings.TrimSpace(row[c+1]))
			}
		}
		items = insertPath(items, labels, media)
	}
	return items, nil
}

func insertPath(level []Node, labels []string, media MediaSet) []Node {
	i := -1
	for j := range level {
		if level[j].Label == labels[0] {
			i = j
			break
		}
	}
	if i < 0 {
		level = append(level, NewNode(labels[0]))
		i = len(level) - 1
	}
	if len(labels) == 1 {
		for _, kind := range MediaPriority {
			if url := media.Get(kind); url != "" {
				level[i].MediaSet = level[i].MediaSet.With(kind, url)
			}
		}
		return level
	}
	level[i].Children = insertPath(level[i].Children, labels[1:], media)
	return level
}
