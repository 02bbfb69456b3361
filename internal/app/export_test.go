package app

// WatchIgnores exposes watchIgnores for tests.
var WatchIgnores = watchIgnores
