//go:build !(android || ios) && !(dev || production || bindings)

package desktop

// wailsTagged is false in plain go builds. Wails only links its window
// frontend under the dev, production or bindings tags.
const wailsTagged = false
