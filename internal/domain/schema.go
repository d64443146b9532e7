package domain

import (
	"encoding/json"
	"slices"
	"strings"
)

// Role is a semantic column category the dashboard understands.
type Role string

const (
	RoleLocation      Role = "location"
	RoleSeverity      Role = "severity"
	RoleCasualties    Role = "casualties"
	RoleSpeedLimit    Role = "speed_limit"
	RoleDayOfWeek     Role = "day_of_week"
	RoleWeather       Role = "weather"
	RoleRoadCondition Role = "road_condition"
	RoleLatitude      Role = "latitude"
	RoleLongitude     Role = "longitude"
)

// Roles lists every role in resolution order.
var Roles = []Role{
	RoleLocation,
	RoleSeverity,
	RoleCasualties,
	RoleSpeedLimit,
	RoleDayOfWeek,
	RoleWeather,
	RoleRoadCondition,
	RoleLatitude,
	RoleLongitude,
}

// rule decides whether a column name can serve a role.
type rule struct {
	role  Role
	match func(name string) bool
}

// rules is evaluated role by role; within a role the first column in table
// order that matches wins.
var rules = []rule{
	{RoleLocation, containsAny("location", "place")},
	{RoleSeverity, containsAll("severity")},
	{RoleCasualties, oneOf("Number_of_Casualties", "Casualties", "Total_Casualties")},
	{RoleSpeedLimit, containsAll("speed", "limit")},
	{RoleDayOfWeek, oneOf("Day_of_Week", "DayOfWeek", "Day")},
	{RoleWeather, containsAll("weather")},
	{RoleRoadCondition, containsAll("road", "condition")},
	{RoleLatitude, oneOf("Latitude", "Lat", "lat")},
	{RoleLongitude, oneOf("Longitude", "Long", "lon", "lng")},
}

func containsAny(parts ...string) func(string) bool {
	return func(name string) bool {
		name = strings.ToLower(name)
		for _, p := range parts {
			if strings.Contains(name, p) {
				return true
			}
		}
		return false
	}
}

func containsAll(parts ...string) func(string) bool {
	return func(name string) bool {
		name = strings.ToLower(name)
		for _, p := range parts {
			if !strings.Contains(name, p) {
				return false
			}
		}
		return true
	}
}

func oneOf(aliases ...string) func(string) bool {
	return func(name string) bool {
		return slices.Contains(aliases, name)
	}
}

// Schema maps roles to the column resolved for them. A role absent from the
// map is unresolved.
type Schema struct {
	columns map[Role]string
}

// NewSchema builds a Schema from an explicit role map. Empty column names are
// treated as unresolved.
func NewSchema(columns map[Role]string) Schema {
	s := Schema{columns: make(map[Role]string, len(columns))}
	for role, col := range columns {
		if col != "" {
			s.columns[role] = col
		}
	}
	return s
}

// Resolve infers a Schema from column names in table order. It is a pure
// function of its input.
func Resolve(columns []string) Schema {
	s := Schema{columns: make(map[Role]string, len(rules))}
	for _, r := range rules {
		for _, col := range columns {
			if r.match(col) {
				s.columns[r.role] = col
				break
			}
		}
	}
	return s
}

// Column returns the column resolved for role.
func (s Schema) Column(role Role) (string, bool) {
	col, ok := s.columns[role]
	return col, ok
}

// Resolved reports whether every given role has a column.
func (s Schema) Resolved(roles ...Role) bool {
	for _, role := range roles {
		if _, ok := s.columns[role]; !ok {
			return false
		}
	}
	return true
}

// Unresolved returns the roles without a column, in resolution order.
func (s Schema) Unresolved() []Role {
	var out []Role
	for _, role := range Roles {
		if _, ok := s.columns[role]; !ok {
			out = append(out, role)
		}
	}
	return out
}

// Map returns a copy of the resolved role map.
func (s Schema) Map() map[Role]string {
	out := make(map[Role]string, len(s.columns))
	for role, col := range s.columns {
		out[role] = col
	}
	return out
}

// MarshalJSON encodes every role, with null for unresolved ones.
func (s Schema) MarshalJSON() ([]byte, error) {
	out := make(map[Role]*string, len(Roles))
	for _, role := range Roles {
		if col, ok := s.columns[role]; ok {
			out[role] = &col
		} else {
			out[role] = nil
		}
	}
	return json.Marshal(out)
}

func (s *Schema) UnmarshalJSON(data []byte) error {
	var in map[Role]*string
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	columns := make(map[Role]string, len(in))
	for role, col := range in {
		if col != nil {
			columns[role] = *col
		}
	}
	*s = NewSchema(columns)
	return nil
}
