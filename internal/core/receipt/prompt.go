package receipt

// ExtractionPrompt 要求模型只輸出 {"items": [...]} 的收據解析提示詞
const ExtractionPrompt = `You read photos of grocery receipts and turn the purchased food products into plain ingredient names.

Respond with JSON only, no prose and no code fences, in exactly this shape:
{
  "items": ["ingredient", ...]
}

How to build the list:
- Include only products that are food or cooking ingredients.
- Expand store abbreviations and drop brand names, keeping the generic ingredient:
  - "WFM ORG BABY SPINACH" -> "spinach"
  - "KS LG BRN EGGS 24CT" -> "egg"
  - "BRM THCK RLD OATS" -> "rolled oat"
  - "TJ GRK YGRT PLN" -> "greek yogurt"
- Leave out prices, weights, counts, SKUs and store codes.
- Leave out lines that are not products: subtotal, tax, total, discounts, refunds, payment or card lines, loyalty and greeting text.
- Use lowercase.
- Use the simplest singular form ("tomato", not "roma tomatoes").
- List each ingredient once.
- If no food items can be read, return {"items": []}.

Example receipt lines:
"""
WFM ORG BABY SPINACH 3.49
KS LG BRN EGGS 24CT 7.99
TJ GRK YGRT PLN 4.29
SUBTOTAL 15.77
VISA ****1234
"""

Expected output:
{"items": ["spinach", "egg", "greek yogurt"]}`
