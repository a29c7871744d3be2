package report

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

func writePDF(path string, s *summary) error {
	m := maroto.New(config.NewBuilder().Build())

	m.AddRows(text.NewRow(12, "Membership Upload Report", props.Text{
		Size:  14,
		Style: fontstyle.Bold,
		Align: align.Center,
	}))

	for _, l := range s.lines {
		m.AddRow(7,
			text.NewCol(6, l.Field, props.Text{Style: fontstyle.Bold}),
			text.NewCol(6, fmt.Sprint(l.Value)),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return fmt.Errorf("failed to generate pdf: %w", err)
	}

	return doc.Save(path)
}
