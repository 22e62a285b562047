package render

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/valuationdesk/internal/report/calc"
	"github.com/dmitrijs2005/valuationdesk/internal/report/fields"
)

const (
	ReportTitle  = "VALUATION REPORT (IN RESPECT OF FLAT)"
	DefaultTitle = "Engineer & Govt. Approved Valuer"
)

// Images holds the already extracted image references in display order.
type Images struct {
	Property []string
	Location []string
}

// Options carries signatory details that are not part of the record.
// Record fields (valuersName, valuersLicense) take precedence.
//
// RealisablePercent and DistressPercent are shares of the fair market value
// printed when the record carries no realisable or distress value. Zero
// leaves such rows as NA.
type Options struct {
	ValuerName        string
	ValuerTitle       string
	ValuerLicense     string
	RealisablePercent float64
	DistressPercent   float64
}

// Render builds the report for f. It never fails: every missing value is
// printed as NA and invalid images are skipped.
func Render(f fields.Fields, imgs Images, opts Options) Document {
	r := renderer{f: f, opts: opts}

	doc := Document{
		Title:      ReportTitle,
		UniqueID:   f["uniqueId"],
		ClientName: f["clientName"],
	}
	doc.Pages = append(doc.Pages,
		r.generalPage(),
		r.boundariesPage(),
		r.apartmentPage(),
		r.flatPage(),
		r.marketabilityRatePage(),
		r.depreciationPage(),
		r.valuationPage(),
		r.conclusionPage(),
		r.declarationPage(),
		r.disclosurePage(),
		r.conductPage(0),
		r.conductPage(1),
	)
	doc.Pages = append(doc.Pages, imagePages(imgs)...)
	return doc
}

type renderer struct {
	f    fields.Fields
	opts Options
}

func (r renderer) v(name string) string    { return r.f.Get(name) }
func (r renderer) date(name string) string { return calc.FormatDate(r.f.Get(name)) }

// nilOr prints "Nil" for empty valuation line items.
func (r renderer) nilOr(name string) string {
	if !r.f.Has(name) {
		return "Nil"
	}
	return r.f[name]
}

// amount renders "Rs. 1,00,000 /- (WORDS)" or NA.
func (r renderer) amount(value, words string) string {
	v := r.v(value)
	if v == fields.NA {
		return fields.NA
	}
	out := fmt.Sprintf("Rs. %s /-", v)
	if w := r.v(words); w != fields.NA {
		out += " (" + w + ")"
	}
	return out
}

func (r renderer) valuer() string {
	if r.f.Has("valuersName") {
		return r.f["valuersName"]
	}
	if r.opts.ValuerName != "" {
		return r.opts.ValuerName
	}
	return fields.NA
}

func (r renderer) license() string {
	if r.f.Has("valuersLicense") {
		return r.f["valuersLicense"]
	}
	if r.opts.ValuerLicense != "" {
		return r.opts.ValuerLicense
	}
	return fields.NA
}

func (r renderer) signature(withTitle bool) Block {
	lines := []string{r.valuer(), "Signature of Approved Valuer"}
	if withTitle {
		title := r.opts.ValuerTitle
		if title == "" {
			title = DefaultTitle
		}
		lines = append(lines, title, r.license())
	}
	return Block{Kind: KindSignature, Lines: lines}
}

func (r renderer) areaKinds() string {
	var kinds []string
	for _, k := range []struct{ field, label string }{
		{"residentialArea", "Residential"},
		{"commercialArea", "Commercial"},
		{"industrialArea", "Industrial"},
	} {
		if r.v(k.field) == "Yes" {
			kinds = append(kinds, k.label)
		}
	}
	if len(kinds) == 0 {
		return fields.NA
	}
	return strings.Join(kinds, " / ")
}

type page struct{ Page }

func newPage(title string) *page { return &page{Page{Title: title}} }

func (p *page) heading(text string) *page {
	p.Blocks = append(p.Blocks, Block{Kind: KindHeading, Text: text})
	return p
}

func (p *page) para(text string) *page {
	p.Blocks = append(p.Blocks, Block{Kind: KindParagraph, Text: text})
	return p
}

func (p *page) table(header []string, rows ...[]string) *page {
	p.Blocks = append(p.Blocks, Block{Kind: KindTable, Table: &Table{Header: header, Rows: rows}})
	return p
}

func (p *page) block(b Block) *page {
	p.Blocks = append(p.Blocks, b)
	return p
}

func row(cells ...string) []string { return cells }

func (r renderer) generalPage() Page {
	return newPage("General").
		heading(ReportTitle).
		heading("I. GENERAL").
		table(nil,
			row("1", "Purpose of valuation", r.v("valuationPurpose")),
			row("2", "a. Date of Inspection", r.date("inspectionDate")),
			row("", "b. Date of Valuation", r.date("valuationMadeDate")),
			row("3", "List of documents produced for perusal", r.v("listOfDocumentsProduced")),
			row("", "Agreement for Sale", r.v("agreementForSale")),
			row("", "Commencement Certificate", r.v("commencementCertificate")),
			row("", "Occupancy Certificate", r.v("occupancyCertificate")),
			row("4", "Name of the owner(s) and his / their address (As per Agreement for Sale)", r.v("ownerNameAddress")),
			row("5", "Brief description of the property", r.v("briefDescriptionProperty")),
			row("6", "Location of the property", "-"),
			row("", "a. Plot No./Survey No.", r.v("plotNo")),
			row("", "b. Door No.", r.v("doorNo")),
			row("", "c. T.S. No./Village", r.v("tsNoVillage")),
			row("", "d. Ward / Taluka", r.v("wardTaluka")),
			row("", "e. Mandal / District", r.v("mandalDistrict")),
			row("", "f. Date of issue and validity of layout of approved map/plan", r.date("layoutIssueDate")),
			row("", "g. Approved map/plan issuing authority", r.v("approvedMapAuthority")),
			row("", "h. Whether genuineness or authenticity of approved map/plan is verified", r.v("mapVerified")),
			row("", "i. Any other comments by our empanelled valuer on authentic of approved map", r.v("valuersComments")),
			row("7", "Postal Address of the property", r.v("postalAddress")),
			row("8", "City / Town", r.v("cityTown")),
			row("", "Residential/Commercial/Industrial area", r.areaKinds()),
			row("9", "Classification of the area: i) High/Middle/Poor", r.v("areaClassification")),
			row("", "ii) Metro/Urban/Semi Urban/Rural", r.v("urbanType")),
			row("10", "Coming under Corporation/Unit/Village Panchayat/Municipality", r.v("jurisdictionType")),
			row("11", "Whether covered under any State/ Central Govt. enactments", r.v("enactmentCovered")),
		).Page
}

func (r renderer) boundariesPage() Page {
	dirs := []string{"North", "South", "East", "West"}

	plot := make([][]string, 0, len(dirs))
	flat := make([][]string, 0, len(dirs))
	for _, d := range dirs {
		plot = append(plot, row(d,
			r.firstOf("boundariesPlot"+d+"Deed", "boundariesPlot"+d),
			r.v("boundariesPlot"+d+"Actual")))
		flat = append(flat, row(d,
			r.firstOf("boundariesShop"+d+"Deed", "boundariesShop"+d),
			r.v("boundariesShop"+d+"Actual")))
	}

	return newPage("Boundaries").
		heading("12 a. Boundaries of the property (Plot)").
		table([]string{"", "A) As per Agreement", "B) Actual"}, plot...).
		heading("12 b. Boundaries of the property (Flat)").
		table([]string{"", "A) As per Agreement", "B) Actual"}, flat...).
		table(nil,
			row("13", "Dimensions of the property: A) As per Documents", r.v("dimensionsDeed")),
			row("", "B) As per Actuals", r.v("dimensionsActual")),
			row("14", "Extent of the Site", r.v("extentUnit")),
			row("15", "Extent of the Site considered for valuation", r.v("extentSiteValuation")),
			row("16", "Latitude, longitude & Co-ordinates of Flat", r.v("latitudeLongitude")),
			row("17", "Whether occupied by the owner/tenant? Rent received per month", r.v("rentReceivedPerMonth")),
		).Page
}

// firstOf returns the first present field, or NA.
func (r renderer) firstOf(names ...string) string {
	for _, n := range names {
		if r.f.Has(n) {
			return r.f[n]
		}
	}
	return fields.NA
}

func (r renderer) apartmentPage() Page {
	return newPage("Apartment").
		heading("II. APARTMENT / BUILDING").
		table(nil,
			row("1", "Nature of the apartment", r.v("apartmentNature")),
			row("2", "Location: C.T.S. No.", r.v("apartmentCTSNo")),
			row("", "T.S. No.", r.v("apartmentTSNo")),
			row("", "Block No.", r.v("apartmentBlockNo")),
			row("", "Ward No.", r.v("apartmentWardNo")),
			row("", "Village/ Municipality/ Corporation", r.v("apartmentMunicipality")),
			row("", "Door No. / Street or Road", r.v("apartmentDoorNoStreetRoad")),
			row("", "Pin Code", r.v("apartmentPinCode")),
			row("3", "Description of the Locality (Residential / Commercial / Mixed)", r.v("localityDescription")),
			row("4", "Year of Construction", r.v("yearConstruction")),
			row("5", "Number of floors", r.v("numberOfFloors")),
			row("6", "Type of structure", r.v("structureType")),
			row("7", "Number of dwelling unit in the building", r.v("numberOfDwellingUnits")),
			row("8", "Quality of construction", r.v("qualityConstruction")),
			row("9", "Appearance of the Building", r.v("buildingAppearance")),
			row("10", "Maintenance of the Building", r.v("buildingMaintenance")),
			row("11", "Facilities available", ""),
			row("", "- Lift", r.v("facilityLift")),
			row("", "- Protected water supply", r.v("facilityWater")),
			row("", "- Underground Sewerage", r.v("facilitySump")),
			row("", "- Car parking (Open /Covered)", r.v("facilityParking")),
			row("", "- Around compound wall", r.v("facilityCompoundWall")),
			row("", "- Pavement around the building", r.v("facilityPavement")),
			row("", "- Any others facility", r.v("facilityOthers")),
		).Page
}

func (r renderer) flatPage() Page {
	return newPage("Flat").
		heading("III. FLAT").
		table(nil,
			row("1", "The floor in which the Unit is situated", r.v("floorUnit")),
			row("2", "Door Number of the Flat", r.v("doorNoUnit")),
			row("3", "Specifications of the Flat", r.v("unitSpecification")),
			row("", "Roof", r.v("roofUnit")),
			row("", "Flooring", r.v("flooringUnit")),
			row("", "Doors & Windows", r.v("doorsUnit")+" / "+r.v("windowsUnit")),
			row("", "Bath / WC", r.v("unitBathAndWC")),
			row("", "Electrical wiring", r.v("unitElectricalWiring")),
			row("", "Fittings", r.v("fittingsUnit")),
			row("", "Finishing", r.v("finishingUnit")),
			row("4", "Flat Tax: Assessment No.", r.v("assessmentNo")),
			row("", "Tax Amount", r.v("taxAmount")),
			row("", "In the Name of", r.v("taxPaidName")),
			row("5", "Electricity service connection number", r.v("electricityConnectionNo")),
			row("", "Meter card is in the name of", r.v("meterCardName")),
			row("6", "How is the maintenance of the Flat?", r.v("unitMaintenance")),
			row("7", "Agreement for Sale executed in the name of", r.v("agreementForSale")),
			row("8", "What is the undivided area of the land as per sale deed?", r.v("undividedLandArea")),
			row("9", "What is the Plinth Area of the Flat?", r.v("plinthArea")),
			row("10", "What is the floor space index?", r.v("floorSpaceIndex")),
			row("11", "What is the Carpet area of the Flat?", r.v("carpetArea")),
			row("12", "Is it Posh/ I Class / Medium/ Ordinary?", r.v("unitClassification")),
			row("13", "Is it being used for residential or commercial?", r.v("residentialOrCommercial")),
			row("14", "It is owner occupied or tenanted", r.v("ownerOccupiedOrLetOut")),
			row("15", "If tenanted, what is the monthly rent", r.v("monthlyRent")),
		).Page
}

func (r renderer) marketabilityRatePage() Page {
	return newPage("Marketability and Rate").
		heading("IV. MARKETABILITY").
		table(nil,
			row("1", "How is the marketability?", r.v("marketabilityRating")),
			row("2", "What are the factors favoring for an extra potential value?", r.v("favoringFactors")),
			row("3", "Any negative factors observed which affect the market value in general?", r.v("negativeFactors")),
		).
		heading("V. RATE").
		table(nil,
			row("1", "Composite rate for a similar flat with same specifications in the adjoining locality", r.v("compositeRateAnalysis")),
			row("2", "Adopted basic composite rate of the building under valuation, assuming new construction", r.v("newConstructionRate")),
			row("3", "Break up for the above rate: Building + Services", r.v("buildingServicesRate")),
			row("", "Land + Other", r.v("landOthersRate")),
			row("4", "Guideline rate obtained from the Registrar's office", r.v("guidelineRate")),
		).Page
}

func (r renderer) depreciationPage() Page {
	return newPage("Composite Rate").
		heading("VI. Composite rate adopted after depreciation").
		table(nil,
			row("a)", "Depreciated Building Rate", r.v("depreciatedBuildingRateFinal")),
			row("", "Replacement cost of Flat with services (V(3)(i))", r.v("replacementCostServices")),
			row("", "Age of the Building", r.v("buildingAgeDepreciation")+" Years"),
			row("", "Future Life of the building estimated", r.v("buildingLifeEstimated")+" Years"),
			row("", "Depreciation percentage assuming the salvage value as 10%", r.v("depreciationPercentageFinal")+" %"),
			row("", "Depreciated Ratio of the building", r.v("depreciatedRatio")),
			row("b)", "Total composite rate arrived for valuation", ""),
			row("", "Depreciated Building rate VI (a)", r.v("depreciatedBuildingRateFinal")),
			row("", "Rate for land & others [V (3) (ii)]", r.v("rateLandOther")),
			row("", "Total Composite rate", r.v("totalCompositeRate")),
		).Page
}

var lineItemLabels = []struct{ key, label string }{
	{"presentValue", "Present value of Flat (Built up area)"},
	{"wardrobes", "Wardrobes"},
	{"showcases", "Show cases / Almirah"},
	{"kitchenArrangements", "Kitchen arrangements"},
	{"superfineFinish", "Superfine Finish"},
	{"interiorDecorations", "Interiors Decorations"},
	{"electricityDeposits", "Electricity Deposits / Electrical fitting etc."},
	{"collapsibleGates", "Extra Collapsible gates / grills works etc."},
	{"potentialValue", "Potential Value, if any"},
	{"otherItems", "Others"},
}

func (r renderer) valuationPage() Page {
	items := make([][]string, 0, len(lineItemLabels)+2)
	for i, it := range lineItemLabels {
		qty, rate, value := r.nilOr(it.key+"Qty"), r.nilOr(it.key+"Rate"), r.nilOr(it.key)
		if i == 0 {
			qty, rate, value = r.v(it.key+"Qty"), r.v(it.key+"Rate"), r.v("valuationItem1")
		}
		items = append(items, row(
			fmt.Sprintf("%d.", i+1), it.label, qty,
			"₹ "+rate+"/-", "₹ "+value+"/-",
		))
	}
	items = append(items,
		row("", "TOTAL AMOUNT", "", "", "₹ "+r.v("totalEstimatedValue")+"/-"),
		row("", "Say", "", "", "₹ "+r.say()+"/-"),
	)

	return newPage("Valuation Details").
		heading("C. VALUATION DETAILS").
		table([]string{"Sr. No", "Description", "Qty. Sq. ft.", "Rate per Unit Sq. ft.", "Estimated / Present Value (₹)"}, items...).
		heading("VALUE OF FLAT").
		table(nil,
			row("Fair Market Value", r.amount("fairMarketValue", "fairMarketValueWords")),
			row("Realizable Value", r.share("realisableValue", "realisableValueWords", r.opts.RealisablePercent)),
			row("Distress Value", r.share("distressValue", "distressValueWords", r.opts.DistressPercent)),
			row("Agreement Value / Circle Rate", r.agreementOrCircle()),
			row("Insurance Value", r.amount("insurableValue", "insurableValueWords")),
		).Page
}

// say is the rounded figure under the total: totalValueSay when recorded,
// otherwise the total (or the fair market value) to the nearest thousand.
func (r renderer) say() string {
	if r.f.Present("totalValueSay") {
		return r.f["totalValueSay"]
	}
	for _, key := range []string{"totalEstimatedValue", "fairMarketValue"} {
		if !r.f.Present(key) {
			continue
		}
		rounded := calc.RoundToNearest1000(r.f[key])
		if n, ok := calc.ParseAmount(rounded); ok {
			return calc.FormatIndian(n)
		}
		return rounded
	}
	return fields.NA
}

// share renders value when recorded, else pct percent of the fair market
// value.
func (r renderer) share(value, words string, pct float64) string {
	if r.f.Present(value) || pct <= 0 || !r.f.Present("fairMarketValue") {
		return r.amount(value, words)
	}
	return calc.FormatCurrencyWithWords(r.f["fairMarketValue"], pct)
}

func (r renderer) agreementOrCircle() string {
	if r.f.Present("agreementValue") || !r.f.Has("valueCircleRate") {
		return r.amount("agreementValue", "agreementValueWords")
	}
	return r.amount("valueCircleRate", "valueCircleRateWords")
}

func (r renderer) conclusionPage() Page {
	fmv := r.amount("fairMarketValue", "fairMarketValueWords")
	text := fmt.Sprintf("As a result of my appraisal and analysis, it is my considered opinion that the present "+
		"fair market value of the above property in the prevailing condition with aforesaid specifications is %s "+
		"of the above property.", fmv)
	rest := fmt.Sprintf("The realizable value is %s and the distress value is %s.",
		r.share("realisableValue", "realisableValueWords", r.opts.RealisablePercent),
		r.share("distressValue", "distressValueWords", r.opts.DistressPercent))

	return newPage("Conclusion").
		para(text).
		para(rest).
		para("Place: " + r.v("valuationPlace")).
		para("Date: " + r.date("valuationMadeDate")).
		block(r.signature(true)).Page
}

func (r renderer) declarationPage() Page {
	p := newPage("Declaration").
		heading("ANNEXURE-II").
		heading("FORMAT-A").
		heading("DECLARATION FROM VALUERS").
		para("I hereby declare that-").
		para(fmt.Sprintf("The information furnished in my valuation report dated %s is true and correct to the best "+
			"of my knowledge and belief and I have made an impartial and true valuation of the property.",
			r.date("valuationMadeDate"))).
		para(declarationItems[0]).
		para(fmt.Sprintf("I have personally inspected the property on %s. The work is not sub-contracted to any "+
			"other valuer and carried out by myself.", r.date("inspectionDate")))
	for _, item := range declarationItems[1:] {
		p.para(item)
	}
	return p.block(r.signature(false)).Page
}

func (r renderer) disclosurePage() Page {
	owner := r.v("ownerNameAddress")
	authority := fmt.Sprintf("As per request of Branch Manager, %s, %s Branch.", r.v("bankName"), r.v("branch"))
	dates := fmt.Sprintf("Date of Appointment: %s Date of Inspection: %s Date of Valuation Report: %s",
		r.date("inspectionDate"), r.date("inspectionDate"), r.date("valuationMadeDate"))

	return newPage("Disclosure").
		para("Further, I hereby provide the following information.").
		table([]string{"S. No.", "Particulars", "Valuer Comment"},
			row("1", "Background information of the asset being valued;",
				"Property in question to be purchased by "+owner+". This is based on information given by Owner and documents available for our perusal."),
			row("2", "Purpose of valuation and appointing authority", authority),
			row("3", "Identity of the valuer and any other experts involved in the valuation;", r.valuer()),
			row("4", "Disclosure of valuer interest or conflict, if any;", "No"),
			row("5", "Date of appointment, valuation date and date of report;", dates),
			row("6", "Inspections and/or investigations undertaken;", "Site inspection was carried out along with "+owner),
			row("7", "Nature and sources of the information used or relied upon", "Local inquiry in the surrounding vicinity."),
			row("8", "Procedures adopted in carrying out the valuation and valuation standards followed;",
				"Actual site visit conducted along with "+owner+". Valuation report was prepared by adopting composite rate method of valuation"),
			row("9", "Restrictions on use of the report, if any;", "The report is only valid for the purpose mentioned in the report"),
			row("10", "Major factors that were taken into account during the valuation;", "Marketability supply and demand, locality, construction quality."),
			row("11", "Caveats, limitations and disclaimers", "No such circumstances were noticed."),
		).
		para("Date: " + r.date("valuationMadeDate")).
		para("Place: " + r.v("valuationPlace")).
		block(r.signature(true)).Page
}

func (r renderer) conductPage(n int) Page {
	p := newPage(fmt.Sprintf("Code of Conduct %d", n+1))
	if n == 0 {
		p.heading("ANNEXURE - IV").
			heading("MODEL CODE OF CONDUCT FOR VALUERS").
			para("All valuers empanelled with bank shall strictly adhere to the following code of conduct:")
	}
	for _, s := range conductPages[n] {
		p.heading(s.Title)
		for i, item := range s.Items {
			p.para(fmt.Sprintf("%d. %s", i+1, item))
		}
	}
	if n == len(conductPages)-1 {
		p.para("Date: " + r.date("valuationMadeDate")).
			para("Place: " + r.v("valuationPlace")).
			block(r.signature(true))
	}
	return p.Page
}

// imagePages emits one page per valid image, property images first.
func imagePages(imgs Images) []Page {
	var pages []Page
	add := func(kind string, srcs []string) {
		n := 0
		for _, src := range srcs {
			if !ValidImageSource(src) {
				continue
			}
			n++
			caption := fmt.Sprintf("%s Image %d", kind, n)
			p := newPage(caption)
			if len(pages) == 0 {
				p.heading("PROPERTY AND LOCATION IMAGES")
			}
			p.block(Block{Kind: KindImage, Src: strings.TrimSpace(src), Caption: caption})
			pages = append(pages, p.Page)
		}
	}
	add("Property", imgs.Property)
	add("Location", imgs.Location)
	return pages
}
