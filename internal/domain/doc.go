// Package domain models Italian civil-protection (DPC) infection statistics
// and the places and date ranges they are queried by.
//
// # Data Source
//
// Statistics come from the Dipartimento della Protezione Civile repository
// at https://github.com/pcm-dpc/COVID-19. Three tables are published, one per
// administrative tier:
//
//	country:  dati-andamento-nazionale/dpc-covid19-ita-andamento-nazionale.csv
//	region:   dati-regioni/dpc-covid19-ita-regioni.csv
//	province: dati-province/dpc-covid19-ita-province.csv
//
// Each table also exists as a daily snapshot with a "-YYYYMMDD" suffix
// before the extension. Single-day queries read the snapshot, ranges read the
// full history.
//
// # Table Conventions
//
// The date column is "data", an ISO-8601 local timestamp without zone
// (e.g. "2020-02-24T18:00:00"). Region rows carry the place name in
// "denominazione_regione", province rows in "denominazione_provincia".
// Statistic columns are snake_case Italian names ("totale_casi",
// "terapia_intensiva"). Province tables publish far fewer statistics than the
// region and country tables, so a statistic valid for one tier can be missing
// for another.
//
// # Names
//
// Place names are held lower-case and alias-resolved ("sicily" -> "sicilia")
// and rendered title-cased. The set of recognised places and statistics is
// reference data loaded once at start-up, see [LoadReference].
package domain
