// Package reaper talks to the REAPER web remote interface. A Channel executes
// textual commands such as GET/EXTSTATE/{section}/{key} against the host and
// returns their textual replies in order. The HTTP implementation sends one
// GET request per call, joining batched commands with ';', and never retries:
// a failed request surfaces as a *ChannelError.
//
// On top of the channel the package offers single-value ExtState access,
// transport actions, and a Settings accessor for the values the setlist
// scripts share with the web application.
package reaper
