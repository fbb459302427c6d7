package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/df07/go-direct-raytracer/pkg/core"
	"github.com/df07/go-direct-raytracer/pkg/geometry"
	"github.com/df07/go-direct-raytracer/pkg/material"
	"github.com/df07/go-direct-raytracer/pkg/renderer"
	"github.com/df07/go-direct-raytracer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	GeometryType string                 `json:"geometryType,omitempty"`
	Point        [3]float32             `json:"point"`
	Normal       [3]float32             `json:"normal"`
	Distance     float32                `json:"distance"`
	Color        string                 `json:"color"` // Final pixel color as #rrggbb
	Properties   map[string]interface{} `json:"properties,omitempty"`
}

func vecJSON(v core.Vec3) [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}

func colorJSON(c core.Color) [3]float32 {
	return [3]float32{c.R, c.G, c.B}
}

func hexColor(rgb [3]uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", rgb[0], rgb[1], rgb[2])
}

// materialInfo lists every material coefficient, including the ones the
// tracer carries but does not shade with
func materialInfo(m material.Material) map[string]interface{} {
	return map[string]interface{}{
		"ambient":      colorJSON(m.Ambient),
		"diffuse":      colorJSON(m.Diffuse),
		"specular":     colorJSON(m.Specular),
		"phong":        m.Phong,
		"transmissive": colorJSON(m.Transmissive),
		"ior":          m.IOR,
		"color":        hexColor(m.Diffuse.Clamp(0, 1).ToRGB8()),
	}
}

// geometryInfo extracts detailed geometry information
func geometryInfo(object geometry.Renderable) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch geom := object.(type) {
	case *geometry.Sphere:
		properties["center"] = vecJSON(geom.Center)
		properties["radius"] = geom.Radius
		return "sphere", properties

	case *geometry.Plane:
		properties["point"] = vecJSON(geom.Point)
		properties["normal"] = vecJSON(geom.Normal)
		return "plane", properties

	case *geometry.Triangle:
		properties["vertices"] = [3][3]float32{vecJSON(geom.V0), vecJSON(geom.V1), vecJSON(geom.V2)}
		if geom.VertexNormals != nil {
			n := geom.VertexNormals
			properties["vertexNormals"] = [3][3]float32{vecJSON(n[0]), vecJSON(n[1]), vecJSON(n[2])}
		}
		return "triangle", properties

	default:
		return "unknown", properties
	}
}

// inspectPixel casts the primary ray through a pixel and describes what it
// hits
func inspectPixel(sceneObj *scene.Scene, x, y int) InspectResponse {
	tracer := renderer.NewTracer(sceneObj)
	ray := tracer.CameraRay(x, y)
	response := InspectResponse{Color: hexColor(tracer.TracePixel(x, y))}

	object, dist, hit := tracer.ClosestCollision(ray)
	if !hit {
		return response
	}

	point := ray.At(dist)
	geometryType, geometryProps := geometryInfo(object)

	response.Hit = true
	response.GeometryType = geometryType
	response.Point = vecJSON(point)
	response.Normal = vecJSON(object.NormalAt(point))
	response.Distance = dist
	response.Properties = map[string]interface{}{
		"material": materialInfo(object.Material()),
		"geometry": geometryProps,
	}
	return response
}

// handleInspect handles ray casting inspection requests
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRenderRequest(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid scene parameters: "+err.Error())
		return
	}

	sceneObj, err := s.createScene(req.Scene)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Width > 0 {
		sceneObj.Width = req.Width
	}
	if req.Height > 0 {
		sceneObj.Height = req.Height
	}
	if err := sceneObj.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	pixelX, err := strconv.Atoi(r.URL.Query().Get("x"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid x coordinate")
		return
	}
	pixelY, err := strconv.Atoi(r.URL.Query().Get("y"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid y coordinate")
		return
	}
	if pixelX < 0 || pixelX >= sceneObj.Width || pixelY < 0 || pixelY >= sceneObj.Height {
		writeError(w, http.StatusBadRequest, "Pixel coordinates out of bounds")
		return
	}

	writeJSON(w, http.StatusOK, inspectPixel(sceneObj, pixelX, pixelY))
}
