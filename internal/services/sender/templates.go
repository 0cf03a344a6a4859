package services

import "html/template"

var verificationTmpl = template.Must(template.New("verification").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Welcome to Quick Market, {{.UserName}}!</h2>
  <p>Please verify your email address by clicking the button below:</p>
  <a href="{{.URL}}" style="background-color: #4CAF50; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; display: inline-block;">
    Verify Email Address
  </a>
  <p>Or copy and paste this link: {{.URL}}</p>
  <p>This link will expire in 24 hours.</p>
</div>`))

var orderConfirmationTmpl = template.Must(template.New("order").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Order Confirmation - Quick Market</h2>
  <p>Your order #{{.OrderID}} has been confirmed!</p>
  <p><strong>Total Amount:</strong> &#8358;{{.TotalAmount.StringFixed 2}}</p>
  <p><strong>Delivery Fee:</strong> &#8358;{{.DeliveryFee.StringFixed 2}}</p>
  {{if .DeliveryDate}}<p><strong>Expected Delivery:</strong> {{.DeliveryDate}}</p>{{end}}
  <p>We'll notify you when your order is ready for pickup/delivery.</p>
</div>`))

var expiringTmpl = template.Must(template.New("expiring").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Hi {{.FirstName}}, your subscription is ending soon</h2>
  <p>Your <strong>{{.Package}}</strong> subscription expires on {{.ExpiresAt}}.</p>
  <p><a href="{{.RenewURL}}">Renew now</a> to keep your delivery slots.</p>
</div>`))
