/*
Package myo provides a real-time processing pipeline for scalar sensor
streams, built for surface EMG signals.

Concept

The pipeline has two concurrent stages connected with bounded channels:

    Source - the origin of samples, one numeric value at a time;
    Processing - rolling window, causal band-pass filter, features;

Samples are collected from a Source into a bounded sample channel. The
processing stage slides an overlapping window over the stream and, every
time the window fills, filters it, extracts a feature vector and publishes
a Result into a bounded result channel. An optional Classifier maps the
filtered window and features to a discrete class.

Both channels drop on overflow instead of blocking: the source is never
stalled by a slow consumer, and accounting for dropped samples is exposed
through Stats.

Components

Components implement the Source and Classifier interfaces declared here.
For example, serial.Source reads newline-delimited samples from a serial
port and wav.Source replays a recorded session file. The pipe package binds
components together and owns their lifecycle.
*/
package myo
