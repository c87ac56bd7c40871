package icon

// Icon identifies a UI symbol in the registry.
type Icon int

const (
	Success Icon = iota
	Fail
	Progress
	Play
	Pause
	Stop
	Loop
	Filter
	Mute
)

var icons = map[Icon]*iconDef{
	Success: {
		emoji:   "✅",
		nerd:    "",
		plain:   "[ok]",
		kaomoji: "(ᵔᴥᵔ)",
		squares: "🟩",
	},
	Fail: {
		emoji:   "❌",
		nerd:    "",
		plain:   "[x]",
		kaomoji: "(╯°□°)╯",
		squares: "🟥",
	},
	Progress: {
		emoji:   "⏳",
		nerd:    "",
		plain:   "...",
		kaomoji: "(・_・;)",
		squares: "🟨",
	},
	Play: {
		emoji:   "▶️",
		nerd:    "",
		plain:   ">",
		kaomoji: "(•̀ᴗ•́)و",
		squares: "🟦",
	},
	Pause: {
		emoji:   "⏸️",
		nerd:    "",
		plain:   "||",
		kaomoji: "(－_－) zzZ",
		squares: "⬜",
	},
	Stop: {
		emoji:   "⏹️",
		nerd:    "",
		plain:   "[]",
		kaomoji: "(￣^￣)",
		squares: "⬛",
	},
	Loop: {
		emoji:   "🔁",
		nerd:    "",
		plain:   "@",
		kaomoji: "(◕‿◕)↻",
		squares: "🟪",
	},
	Filter: {
		emoji:   "🎨",
		nerd:    "",
		plain:   "*",
		kaomoji: "(ﾉ◕ヮ◕)ﾉ*:･ﾟ✧",
		squares: "🟧",
	},
	Mute: {
		emoji:   "🔇",
		nerd:    "",
		plain:   "m",
		kaomoji: "(－‸ლ)",
		squares: "🟫",
	},
}
