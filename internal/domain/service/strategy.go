package service

import "SmartDCA/internal/domain/models"

// IndicatorEngine computes the indicator snapshot for one evaluation index of
// a price series, using only data at or before that index.
type IndicatorEngine interface {
	Snapshot(series *models.PriceSeries, i int) models.IndicatorSnapshot
}

// SignalScorer turns an indicator snapshot into a composite buy signal.
// Given identical input the output must be byte-identical.
type SignalScorer interface {
	Score(snap models.IndicatorSnapshot) models.Signal
}
