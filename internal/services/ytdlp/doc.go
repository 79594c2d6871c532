// Package ytdlp wraps the yt-dlp command line tool for pulling playlist
// audio into the songs directory. Command execution sits behind an
// Executor so tests can run without the binary installed.
package ytdlp
