package config

// Base application details
const AppName = "shade"
const ConfigDirName = "shade"
const ThemesDirName = "themes"
const DefaultConfigFileName = "config.toml"
const DefaultLogFileName = "shade.log"

// Highlight engine
const DefaultDebounceMs = 65
const DefaultWorkers = 0 // 0 means one per CPU

// Viewer
const DefaultTabWidth = 4
const DefaultScrollOff = 3
const SystemClipboard = true
