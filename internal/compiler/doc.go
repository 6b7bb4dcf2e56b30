// Package compiler turns worker descriptions into validated ir.WorkerSpec
// lists.
//
// Three source formats are supported:
//
//   - Notes: blank-line separated blocks, one per worker, as in
//
//     Monkey 0:
//     Starting items: 79, 98
//     Operation: new = old * 19
//     Test: divisible by 23
//     If true: throw to monkey 2
//     If false: throw to monkey 3
//
//   - CUE: a top-level "workers" list of structs (see CompileWorkers).
//   - YAML: the same "workers" list (see DecodeYAML).
//
// Parsers report the first syntax error as a *CompileError. Validate then
// collects every structural problem at once; the engine itself fails fast on
// the first.
package compiler
