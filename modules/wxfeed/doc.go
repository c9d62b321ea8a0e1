// Package wxfeed feeds live weather observations into calculator sessions.
//
// A socket.io client listens for "observation" events carrying
// {station, altimeter_inhg, temperature_c, wind_dir, wind_speed}. Each
// observation is applied to the departure or destination inputs of a
// session whose airport id matches the station, which recomputes the
// affected pages like any other input change.
package wxfeed
