// Package dataprocessing turns decoded exchange reports into canonical numeric
// records. Every report passes through the same chain of stages; only the
// field dictionary and the final shaping differ per report kind.
//
// # Architecture
//
// The engine is a pipeline of pure stages:
//
//  1. Translator: maps localized column labels to canonical keys
//  2. Normalizer: converts numeric text to decimals ("1,234" -> 1234, "12.5%" -> 0.125)
//  3. Resolver: classifies large-trader rows by right, trader category and contract month
//  4. Netting: derives NonSpecific (All - Specific) and BackMonths (AllMonths - FrontMonth)
//  5. Aggregator: sums sub-categories into totals the exchange does not publish
//  6. Assembler: flattens typed series keys into the legacy field names
//
// # Usage
//
//	engine := dataprocessing.NewEngine(dataprocessing.DefaultCatalog())
//	record := engine.Decompose(table, domain.KindLargeTradersFutures, date)
//	if record == nil {
//	    // no rows for that day
//	}
//
// # Data Flow
//
//	Table -> Translate -> Normalize -> Classify -> NetCategories -> NetBuckets -> Assemble -> OutputRecord
//
// # Missing data
//
// Missing or unparseable values become zero, and a netting join that finds no
// subtrahend for a day produces an all-zero record. A zero in the output is
// therefore ambiguous between "published as zero" and "not published".
package dataprocessing
