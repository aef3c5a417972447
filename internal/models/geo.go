package models

import (
	"errors"
	"math"
)

var (
	errNonFiniteCoordinate = errors.New("coordinates must be finite numbers")
	errLatitudeRange       = errors.New("latitude must be between -90 and 90")
	errLongitudeRange      = errors.New("longitude must be between -180 and 180")
	errRadius              = errors.New("radius must be a finite non-negative number")
)

// Point - географическая точка в градусах WGS84
type Point struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate проверяет, что координаты конечны и лежат в допустимых диапазонах
func (p Point) Validate() error {
	if !isFinite(p.Latitude) || !isFinite(p.Longitude) {
		return errNonFiniteCoordinate
	}
	if p.Latitude < -90 || p.Latitude > 90 {
		return errLatitudeRange
	}
	if p.Longitude < -180 || p.Longitude > 180 {
		return errLongitudeRange
	}
	return nil
}

// BoundingBox - прямоугольник в градусах, границы включаются.
// Это не геодезический радиус: размер в метрах зависит от широты.
type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLng float64
	MaxLng float64
}

// NewBoundingBox строит прямоугольник [lat-r, lat+r] x [lng-r, lng+r]
func NewBoundingBox(center Point, radius float64) (BoundingBox, error) {
	if !isFinite(center.Latitude) || !isFinite(center.Longitude) {
		return BoundingBox{}, errNonFiniteCoordinate
	}
	if !isFinite(radius) || radius < 0 {
		return BoundingBox{}, errRadius
	}
	return BoundingBox{
		MinLat: center.Latitude - radius,
		MaxLat: center.Latitude + radius,
		MinLng: center.Longitude - radius,
		MaxLng: center.Longitude + radius,
	}, nil
}

// Contains сообщает, попадает ли точка в прямоугольник (включая границу)
func (b BoundingBox) Contains(p Point) bool {
	return p.Latitude >= b.MinLat && p.Latitude <= b.MaxLat &&
		p.Longitude >= b.MinLng && p.Longitude <= b.MaxLng
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
