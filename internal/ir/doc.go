// Package ir provides the canonical value types shared by every keepaway package.
//
// This package contains type definitions and pure functions only. All other
// internal packages import ir; ir imports nothing internal. This keeps the
// worker and rule types the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - NO float types anywhere - items are int64
//   - Rule types are closed sum types, evaluated with a switch
//   - All JSON and YAML tags use snake_case
//   - Ordering uses logical round numbers, never wall-clock timestamps
package ir
