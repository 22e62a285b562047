package render

import (
	"strings"
	"testing"

	"github.com/dmitrijs2005/valuationdesk/internal/report/fields"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cells flattens every table cell and paragraph of the document.
func cells(d Document) []string {
	var out []string
	for _, p := range d.Pages {
		for _, b := range p.Blocks {
			switch b.Kind {
			case KindTable:
				for _, r := range b.Table.Rows {
					out = append(out, r...)
				}
			case KindSignature:
				out = append(out, b.Lines...)
			default:
				out = append(out, b.Text)
			}
		}
	}
	return out
}

func findRow(t *testing.T, d Document, label string) []string {
	t.Helper()
	for _, p := range d.Pages {
		for _, b := range p.Blocks {
			if b.Kind != KindTable {
				continue
			}
			for _, r := range b.Table.Rows {
				for _, c := range r {
					if c == label {
						return r
					}
				}
			}
		}
	}
	t.Fatalf("row %q not found", label)
	return nil
}

func TestRender_EmptyFieldsRenderNA(t *testing.T) {
	doc := Render(fields.Fields{}, Images{}, Options{})

	require.Len(t, doc.Pages, 12)
	assert.Equal(t, ReportTitle, doc.Title)
	for _, c := range cells(doc) {
		assert.NotContains(t, c, "<nil>")
	}
	assert.Equal(t, fields.NA, findRow(t, doc, "Purpose of valuation")[2])
	assert.Equal(t, fields.NA, findRow(t, doc, "a. Date of Inspection")[2])
	assert.Equal(t, fields.NA, findRow(t, doc, "Fair Market Value")[1])
	assert.Equal(t, []string{"2.", "Wardrobes", "Nil", "₹ Nil/-", "₹ Nil/-"}, findRow(t, doc, "Wardrobes"))
	assert.Equal(t, fields.NA, findRow(t, doc, "Residential/Commercial/Industrial area")[2])
}

func TestRender_Values(t *testing.T) {
	f := fields.Fields{
		"uniqueId":             "VAL-7",
		"clientName":           "Asha",
		"valuationPurpose":     "Home loan",
		"inspectionDate":       "2024-03-05",
		"residentialArea":      "Yes",
		"commercialArea":       "Yes",
		"fairMarketValue":      "45,00,000",
		"fairMarketValueWords": "Rupees FORTY FIVE LAC Only",
		"valuationItem1":       "40,00,000",
		"totalEstimatedValue":  "45,00,000",
		"wardrobes":            "5,00,000",
		"boundariesPlotNorth":  "Road",
		"valuersName":          "R. Deshpande",
	}
	doc := Render(f, Images{}, Options{ValuerLicense: "LIC-1"})

	assert.Equal(t, "VAL-7", doc.UniqueID)
	assert.Equal(t, "Asha", doc.ClientName)
	assert.Equal(t, "Home loan", findRow(t, doc, "Purpose of valuation")[2])
	assert.Equal(t, "5/3/2024", findRow(t, doc, "a. Date of Inspection")[2])
	assert.Equal(t, "Residential / Commercial", findRow(t, doc, "Residential/Commercial/Industrial area")[2])
	assert.Equal(t, "Rs. 45,00,000 /- (Rupees FORTY FIVE LAC Only)", findRow(t, doc, "Fair Market Value")[1])
	assert.Equal(t, "₹ 40,00,000/-", findRow(t, doc, "Present value of Flat (Built up area)")[4])
	assert.Equal(t, "₹ 5,00,000/-", findRow(t, doc, "Wardrobes")[4])
	assert.Equal(t, "₹ 45,00,000/-", findRow(t, doc, "TOTAL AMOUNT")[4])
	assert.Equal(t, "₹ 45,00,000/-", findRow(t, doc, "Say")[4])
	assert.Equal(t, "Road", findRow(t, doc, "North")[1], "legacy plot boundary falls back")

	all := strings.Join(cells(doc), "\n")
	assert.Contains(t, all, "R. Deshpande")
	assert.Contains(t, all, "LIC-1")
	assert.Contains(t, all, DefaultTitle)
}

func TestRender_SayRounding(t *testing.T) {
	tests := []struct {
		name string
		f    fields.Fields
		want string
	}{
		{"recorded say wins", fields.Fields{"totalValueSay": "45,00,000", "totalEstimatedValue": "44,87,650"}, "₹ 45,00,000/-"},
		{"total rounded", fields.Fields{"totalEstimatedValue": "44,87,650"}, "₹ 44,88,000/-"},
		{"currency formatted total", fields.Fields{"totalEstimatedValue": "₹ 12,499/-"}, "₹ 12,000/-"},
		{"falls back to fair market value", fields.Fields{"fairMarketValue": "9,99,600"}, "₹ 10,00,000/-"},
		{"nothing recorded", fields.Fields{}, "₹ NA/-"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Render(tt.f, Images{}, Options{})
			assert.Equal(t, tt.want, findRow(t, doc, "Say")[4])
		})
	}
}

func TestRender_RealisableAndDistressShares(t *testing.T) {
	f := fields.Fields{"fairMarketValue": "₹ 10,00,000/-", "distressValue": "7,00,000"}

	doc := Render(f, Images{}, Options{})
	assert.Equal(t, fields.NA, findRow(t, doc, "Realizable Value")[1], "no share configured")

	doc = Render(f, Images{}, Options{RealisablePercent: 90, DistressPercent: 80})
	assert.Equal(t, "₹ 9,00,000/- (NINE LAC)", findRow(t, doc, "Realizable Value")[1])
	assert.Equal(t, "Rs. 7,00,000 /-", findRow(t, doc, "Distress Value")[1], "recorded value wins")
	assert.Contains(t, strings.Join(cells(doc), "\n"), "The realizable value is ₹ 9,00,000/- (NINE LAC)")
}

func TestRender_ImagePages(t *testing.T) {
	doc := Render(fields.Fields{}, Images{
		Property: []string{"data:image/png;base64,AAAA", "https://", "not a url"},
		Location: []string{"https://maps.example.com/pin.png", "blob:xyz"},
	}, Options{})

	require.Len(t, doc.Pages, 15)
	assert.Equal(t, 3, doc.ImageCount())

	imgs := doc.Pages[12:]
	assert.Equal(t, "Property Image 1", imgs[0].Title)
	assert.Equal(t, KindHeading, imgs[0].Blocks[0].Kind)
	assert.Equal(t, "Location Image 1", imgs[1].Title)
	assert.Equal(t, "Location Image 2", imgs[2].Title)
	for _, p := range imgs {
		assert.Equal(t, 1, p.Images(), "one image per page")
	}
}

func TestRender_IsPure(t *testing.T) {
	f := fields.Fields{"valuationPurpose": "x"}
	a := Render(f, Images{}, Options{})
	b := Render(f, Images{}, Options{})
	assert.Equal(t, a, b)
	assert.Equal(t, fields.Fields{"valuationPurpose": "x"}, f)
}

func TestValidImageSource(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"", false},
		{"   ", false},
		{"data:image/jpeg;base64,/9j/", true},
		{"blob:http://localhost/abc", true},
		{"https://cdn.example.com/a.jpg", true},
		{"http://10.0.0.1:8080/a.jpg", true},
		{"https://", false},
		{"ftp://host/a.jpg", false},
		{"/relative.jpg", false},
		{"http://%zz", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidImageSource(tt.src), tt.src)
	}
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "image", KindImage.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
