package notionledger

import (
	"time"

	"github.com/jomei/notionapi"

	"github.com/dvloznov/pay-watcher/internal/ledger"
)

// EntryToNotionProperties converts a ledger entry to the properties of one
// page in the ledger database. Content is the page title; Source and the
// category classifiers become selects so the ledger view can group on them.
func EntryToNotionProperties(e ledger.Entry) notionapi.Properties {
	props := notionapi.Properties{
		"Content": notionapi.TitleProperty{
			Title: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: e.Content,
					},
				},
			},
		},
		"Amount": notionapi.NumberProperty{
			Number: float64(e.Amount),
		},
	}

	if e.Source != "" {
		props["Source"] = notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: e.Source,
			},
		}
	}

	if e.LargeCategory != "" {
		props["Category"] = notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: e.LargeCategory,
			},
		}
	}

	if e.MiddleCategory != "" {
		props["Subcategory"] = notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: e.MiddleCategory,
			},
		}
	}

	if parsed, err := time.Parse("2006/01/02", e.Date); err == nil {
		d := notionapi.Date(parsed)
		props["Date"] = notionapi.DateProperty{
			Date: &notionapi.DateObject{
				Start: &d,
			},
		}
	}

	return props
}
