// Package event turns merged spreadsheet rows into calendar event records.
//
// A Record is the intermediate form between a merged table and a calendar
// write. It can be written to and read back from a CSV file with a fixed
// header, or exported as an iCalendar file for preview.
package event
