package records

// Embedded feeder lists sampled during generation. Small on purpose: variety
// comes from combining them, not from list size.

var firstNames = []string{
	"James", "Mary", "Robert", "Patricia", "John", "Jennifer", "Michael",
	"Linda", "David", "Elizabeth", "William", "Barbara", "Richard", "Susan",
	"Joseph", "Jessica", "Thomas", "Sarah", "Carlos", "Maria", "Wei", "Ana",
	"Ahmed", "Fatima", "Dmitri", "Yuki", "Priya", "Kwame", "Ingrid", "Luca",
}

var lastNames = []string{
	"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller",
	"Davis", "Rodriguez", "Martinez", "Hernandez", "Lopez", "Gonzalez",
	"Wilson", "Anderson", "Thomas", "Taylor", "Moore", "Jackson", "Martin",
	"Lee", "Nguyen", "Kim", "Patel", "Chen", "O'Brien", "Kowalski", "Haddad",
}

var streets = []string{
	"Main St", "Oak Ave", "Maple Dr", "Cedar Ln", "Park Blvd", "Elm St",
	"Washington Ave", "Lake Rd", "Hillcrest Dr", "Sunset Blvd", "2nd St",
	"River Rd", "Church St", "Highland Ave", "Forest Ln", "Meadow Ct",
}

// cities pair city/state/zip-prefix so sampled addresses stay coherent.
var cities = []struct {
	City      string
	State     string
	ZipPrefix string
}{
	{"Springfield", "IL", "627"},
	{"Riverside", "CA", "925"},
	{"Franklin", "TN", "370"},
	{"Georgetown", "TX", "786"},
	{"Clinton", "MS", "390"},
	{"Arlington", "VA", "222"},
	{"Salem", "OR", "973"},
	{"Madison", "WI", "537"},
	{"Dayton", "OH", "454"},
	{"Aurora", "CO", "800"},
}

var specialties = []string{
	"Family Medicine", "Internal Medicine", "Pediatrics", "Cardiology",
	"Orthopedics", "Dermatology", "Neurology", "Radiology",
}

var practiceSuffixes = []string{
	"Medical Group", "Family Practice", "Clinic", "Health Associates",
	"Medical Center", "Physicians LLC",
}

var planNames = []string{
	"Blue Shield PPO", "Aetna Choice", "United HealthOne", "Cigna Open Access",
	"Humana Gold", "Kaiser Select", "Medicare Part B", "Medicaid",
}

// icdCodes is a small pool of plausible diagnosis codes.
var icdCodes = []string{
	"J06.9", "M54.5", "I10", "E11.9", "K21.9", "F41.1", "J45.909", "N39.0",
	"R51.9", "M25.561", "L30.9", "H66.90", "R05.1", "E78.5", "G43.909",
}

// cptCodes pair procedure codes with a charge band.
var cptCodes = []struct {
	Code    string
	MinFee  float64
	MaxFee  float64
}{
	{"99213", 75, 150},
	{"99214", 110, 210},
	{"99203", 100, 180},
	{"90471", 25, 60},
	{"36415", 10, 30},
	{"81002", 15, 40},
	{"93000", 40, 95},
	{"71046", 90, 220},
	{"20610", 120, 300},
	{"97110", 45, 110},
}

var placeCodes = []string{"11", "11", "11", "22", "21", "12"}
