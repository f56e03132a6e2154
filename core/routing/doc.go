package routing

// Package routing computes routes for plan legs. Network modes are routed
// with Dijkstra over freespeed travel times; other modes are teleported along
// the beeline at a fixed speed. TripRouter dispatches by leg mode and is the
// service strategy modules call after mutating a plan.
