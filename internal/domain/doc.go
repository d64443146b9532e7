// Package domain models road accident records and the dashboard computations
// over them: column role inference, filtering and aggregation.
//
// # Data Source
//
// Accident records come from a spreadsheet export (sheet "Data") or a CSV
// file with one row per reported accident. Column names are not fixed across
// exports: the same concept appears as "Junction_Location", "Place" or
// "Accident Location" depending on who produced the file. The dataset package
// parses the file into an immutable [Table]; everything in this package reads
// that table and never mutates it.
//
// # Column Roles
//
// [Resolve] maps free-form column names to the semantic roles the dashboard
// knows how to use. Rules are evaluated per role, columns in table order, and
// the first matching column wins:
//
//	location        name contains "location" or "place"        (case-insensitive)
//	severity        name contains "severity"                   (case-insensitive)
//	casualties      Number_of_Casualties | Casualties | Total_Casualties
//	speed_limit     name contains "speed" and "limit"          (case-insensitive)
//	day_of_week     Day_of_Week | DayOfWeek | Day
//	weather         name contains "weather"                    (case-insensitive)
//	road_condition  name contains "road" and "condition"       (case-insensitive)
//	latitude        Latitude | Lat | lat
//	longitude       Longitude | Long | lon | lng
//
// A role with no matching column is unresolved. Unresolved roles switch off
// the filters and metrics that need them; they are never errors.
//
// # Date Column
//
// Every record carries a parsed accident date, taken from the configured date
// column (default "Accident Date"). Date ranges compare calendar days, both
// ends inclusive. A range missing either end, or with start after end, does
// not filter at all.
//
// # Missing Values
//
// Empty cells and the usual spreadsheet sentinels (NaN, NA, N/A, null) load
// as null [Value]s. Each aggregate skips the rows whose inputs are null; a
// null never fails a whole summary.
//
// # Sampling
//
// The speed/casualties scatter sample is drawn uniformly without replacement
// from a seeded generator, so the same (table, schema, criteria, seed) always
// produces the same [Metrics]. Map points are the first rows with coordinates,
// in table order.
package domain
