package constant

// VideoExtensions lists container extensions the preview layer routes to the player.
var VideoExtensions = []string{
	".mp4", ".mov", ".m4v", ".flv", ".mxf", ".3gp", ".mpg",
	".avi", ".wmv", ".mkv", ".webm", ".vob", ".ogv", ".rmvb",
}

// AudioExtensions lists audio-only container extensions the player accepts.
var AudioExtensions = []string{
	".mp3", ".wav", ".flac", ".aac", ".ogg", ".wma", ".m4a",
	".aiff", ".ape", ".opus", ".ra", ".ram", ".mid", ".midi",
}

// LUTExtensions lists color lookup table formats accepted as video filters.
var LUTExtensions = []string{".cube", ".3dl"}
