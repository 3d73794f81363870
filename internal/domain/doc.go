// Package domain implements the station-freshness monitor and the photo
// month distributor as pure functions over plain data.
//
// # Station names
//
// Transmission files are named after the station that produced them, with
// transport and table markers appended by the logger software:
//
//	"NAIROBI_DCP_2024.txt"    →  "NAIROBI"
//	"Mansa_AWS_Table1.dat"    →  "MANSA"
//	"KASAMA_MET_03.csv"       →  "KASAMA MET"
//
// The extension is dropped, the name is uppercased, the first noise token and
// everything after it is cut, digit runs directly following a letter,
// underscore or space are removed, and underscores become spaces. Names that
// collapse to fewer than two characters are ignored. See [Normalizer].
//
// # Embedded dates
//
// File contents are scanned for two date shapes:
//
//	YYYY-M-D or YYYY/M/D   e.g. "2024-03-07", "2024/3/7"
//	D-M-YYYY or D/M/YYYY   e.g. "07-03-2024", "7/3/2024"
//
// A four digit first segment selects year-month-day, anything else is read
// day-month-year. The latest valid date wins. See [Extractor].
//
// # Liveness
//
//	elapsed ≤ 24h        Online
//	24h < elapsed ≤ 72h  Delayed
//	elapsed > 72h        Offline
//
// # Month distribution
//
// A photo folder label "2025_3_4" means year 2025 with March and April
// skipped. Files are sorted with numeric-aware collation and spread over the
// remaining months in blocks of ceil(n/months). See [Plan].
package domain
