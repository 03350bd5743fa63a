// Package component manages the lifecycle of long-lived service parts.
//
// A Component starts, stops and reports health. The Registry starts
// components in registration order and stops them in reverse, so
// dependencies register first.
package component
