//go:build !(android || ios) && (dev || production || bindings)

package desktop

const wailsTagged = true
