// Package benchmark measures the issue service end to end.
//
// Each mutation rewrites the snapshot file, so cost grows with the number
// of stored issues; the benchmarks are parameterized by store size.
//
//	go test -run=^$ -bench=. -benchmem ./internal/tests/benchmark/
//	go test -run=^$ -bench=. -count=6 ./internal/tests/benchmark/ > new.txt
//	benchstat old.txt new.txt
package benchmark
