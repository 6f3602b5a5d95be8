package relay

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Profile holds the requester identity and fixed ticket fields sent with every
// service request.
type Profile struct {
	MachineType string `yaml:"machine_type"`
	TripCharge  string `yaml:"trip_charge"`
	SiteName    string `yaml:"site_name"`
	FirstName   string `yaml:"first_name"`
	LastName    string `yaml:"last_name"`
	Email       string `yaml:"email"`
	Phone       string `yaml:"phone"`
	Notes       string `yaml:"notes"`
	ProblemCode string `yaml:"problem_code"`
	PONumber    string `yaml:"po_number"`
}

// DefaultProfile returns the Georgia Tech Housing requester profile.
func DefaultProfile() Profile {
	return Profile{
		MachineType: "Washer",
		TripCharge:  "0",
		SiteName:    "GEORGIA INSTITUTE OF TECHNOLOGY",
		FirstName:   "GT",
		LastName:    "Housing",
		Email:       "housinghelpdesk@housing.gatech.edu",
		Phone:       "404-894-2470",
		ProblemCode: "Out Of Order",
	}
}

// LoadProfile reads a YAML profile from path. Keys missing from the file keep
// their DefaultProfile values. An empty path returns the defaults.
func LoadProfile(path string) (Profile, error) {
	profile := DefaultProfile()
	if strings.TrimSpace(path) == "" {
		return profile, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read profile: %w", err)
	}
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return Profile{}, fmt.Errorf("parse profile %s: %w", path, err)
	}
	return profile, nil
}

// Ticket is a quick service request for one machine.
type Ticket struct {
	MachineID MachineID
	SiteID    string
	Profile   Profile
}

// Encode returns the application/x-www-form-urlencoded body for the ticket.
// Fields keep the order the upstream request-service form posts them in.
func (t Ticket) Encode() string {
	fields := [][2]string{
		{"MachineID", t.MachineID.String()},
		{"MachineType", t.Profile.MachineType},
		{"SiteID", t.SiteID},
		{"TripCharge", t.Profile.TripCharge},
		{"SiteName", t.Profile.SiteName},
		{"FirstName", t.Profile.FirstName},
		{"LastName", t.Profile.LastName},
		{"Email", t.Profile.Email},
		{"Phone", t.Profile.Phone},
		{"Notes", t.Profile.Notes},
		{"ProblemCode", t.Profile.ProblemCode},
		{"PONumber", t.Profile.PONumber},
	}

	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(f[0]))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(f[1]))
	}
	return b.String()
}
