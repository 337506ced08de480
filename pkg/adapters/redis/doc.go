// Package redis implements a message-queue emitter on Redis Streams.
package redis
