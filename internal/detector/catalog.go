package detector

// Fixed location catalogs findings are drawn from. Tooth sites use FDI
// two-digit notation with a readable name, matching the reference
// catalog.
var toothSites = []string{
	"11 (upper right central incisor)",
	"12 (upper right lateral incisor)",
	"13 (upper right canine)",
	"21 (upper left central incisor)",
	"22 (upper left lateral incisor)",
	"31 (lower left central incisor)",
	"32 (lower left lateral incisor)",
	"41 (lower right central incisor)",
	"42 (lower right lateral incisor)",
}

var gumRegions = []string{
	"upper anterior gum region",
	"lower anterior gum region",
	"right molar region",
	"left molar region",
	"full gum line",
}

const locationGingiva = "gingiva"
