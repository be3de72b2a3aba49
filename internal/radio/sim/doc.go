// Package sim provides an in-process radio driver with simulated networks.
// It implements the wifi.Radio interface with deterministic, configurable
// behavior: a fixed set of visible networks, adjustable association and scan
// delays, and fault injection. The daemon runs on it wherever no real
// wireless hardware is available, and tests use it to exercise full
// connection lifecycles without a radio.
package sim
